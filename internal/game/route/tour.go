package route

import (
	"fmt"
	"strings"
)

// Stop is a tour destination with services to use before arriving, such as
// "bank" or "advanced smithing".
type Stop struct {
	Location string
	Needs    []string
}

// ParseStop parses "need,need:Location"; a bare name has no needs.
func ParseStop(s string) Stop {
	needs, loc, ok := strings.Cut(s, ":")
	if !ok {
		return Stop{Location: strings.TrimSpace(s)}
	}
	st := Stop{Location: strings.TrimSpace(loc)}
	for _, n := range strings.Split(needs, ",") {
		if n = strings.TrimSpace(n); n != "" {
			st.Needs = append(st.Needs, strings.ToLower(n))
		}
	}
	return st
}

// Tour is the best visiting order found.
type Tour struct {
	Path
	// Order is the destination order chosen.
	Order []string
	// ServiceVisits maps each need to the location that served it.
	ServiceVisits map[string]string
}

type tourState struct {
	g       *Graph
	path    Path
	at      string
	visited map[string]bool
	used    map[string]string
}

func (s *tourState) walk(p Path) {
	s.path.extend(p)
	for _, l := range p.Legs {
		s.visited[l.To] = true
		s.at = l.To
	}
}

func (s *tourState) servedBy(need string) (string, bool) {
	for _, loc := range s.path.Locations() {
		if s.visited[loc] && s.g.provides(loc, need) {
			return loc, true
		}
	}
	if s.g.provides(s.at, need) {
		return s.at, true
	}
	return "", false
}

// serve satisfies need before heading to dest: already visited, on the way,
// or via the service location with the cheapest detour.
func (s *tourState) serve(need, dest string) error {
	if loc, ok := s.servedBy(need); ok {
		s.used[need] = loc
		return nil
	}
	direct, err := s.g.shortest(s.at, dest)
	if err == nil {
		for _, loc := range direct.Locations() {
			if s.g.provides(loc, need) {
				s.used[need] = loc
				return nil
			}
		}
	}
	var best Path
	bestLoc, bestSteps := "", -1
	for _, svc := range s.g.ServicesProviding(need) {
		to, err := s.g.shortest(s.at, svc)
		if err != nil {
			continue
		}
		from, err := s.g.shortest(svc, dest)
		if err != nil {
			continue
		}
		if total := to.Steps + from.Steps; bestSteps < 0 || total < bestSteps {
			best, bestLoc, bestSteps = to, svc, total
		}
	}
	if bestSteps < 0 {
		return fmt.Errorf("route: no reachable %s before %s: %w", need, dest, ErrUnreachable)
	}
	s.walk(best)
	s.visited[bestLoc] = true
	s.used[need] = bestLoc
	return nil
}

// Tour finds the cheapest order to visit every stop from start, optionally
// finishing at end, by trying every order.
func (g *Graph) Tour(start string, stops []Stop, end string) (*Tour, error) {
	if len(stops) > g.cfg.MaxTourStops {
		return nil, fmt.Errorf("route: %d stops, limit %d: %w", len(stops), g.cfg.MaxTourStops, ErrTooManyStops)
	}
	src, err := g.Resolve(start)
	if err != nil {
		return nil, err
	}
	resolved := make([]Stop, len(stops))
	for i, st := range stops {
		loc, err := g.Resolve(st.Location)
		if err != nil {
			return nil, err
		}
		resolved[i] = Stop{Location: loc, Needs: st.Needs}
	}
	var dst string
	if end != "" {
		if dst, err = g.Resolve(end); err != nil {
			return nil, err
		}
	}

	var best *Tour
	var lastErr error
	permute(len(resolved), func(order []int) {
		t, err := g.tryOrder(src, resolved, order, dst)
		if err != nil {
			lastErr = err
			return
		}
		if best == nil || t.Steps < best.Steps || (t.Steps == best.Steps && t.Teleports < best.Teleports) {
			best = t
		}
	})
	if best == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("route: %w", ErrUnreachable)
		}
		return nil, lastErr
	}
	return best, nil
}

func (g *Graph) tryOrder(src string, stops []Stop, order []int, dst string) (*Tour, error) {
	s := &tourState{g: g, at: src, visited: map[string]bool{src: true}, used: make(map[string]string)}
	t := &Tour{}
	for _, i := range order {
		st := stops[i]
		for _, need := range st.Needs {
			if err := s.serve(need, st.Location); err != nil {
				return nil, err
			}
		}
		p, err := g.shortest(s.at, st.Location)
		if err != nil {
			return nil, err
		}
		s.walk(p)
		t.Order = append(t.Order, st.Location)
	}
	if dst != "" && s.at != dst {
		p, err := g.shortest(s.at, dst)
		if err != nil {
			return nil, err
		}
		s.walk(p)
	}
	t.Path = s.path
	t.ServiceVisits = s.used
	return t, nil
}

// permute calls fn with every ordering of 0..n-1.
func permute(n int, fn func([]int)) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			fn(idx)
			return
		}
		for i := k; i < n; i++ {
			idx[k], idx[i] = idx[i], idx[k]
			rec(k + 1)
			idx[k], idx[i] = idx[i], idx[k]
		}
	}
	rec(0)
}

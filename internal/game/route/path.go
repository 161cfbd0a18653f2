package route

import (
	"container/heap"
	"fmt"
)

// Path is a sequence of legs.
type Path struct {
	Legs      []Leg
	Steps     int
	Teleports int
}

// Locations lists every location visited, start included.
func (p Path) Locations() []string {
	if len(p.Legs) == 0 {
		return nil
	}
	out := []string{p.Legs[0].From}
	for _, l := range p.Legs {
		out = append(out, l.To)
	}
	return out
}

func (p *Path) extend(o Path) {
	p.Legs = append(p.Legs, o.Legs...)
	p.Steps += o.Steps
	p.Teleports += o.Teleports
}

type node struct {
	name  string
	steps int
	index int
}

type queue []*node

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].steps == q[j].steps {
		return q[i].name < q[j].name
	}
	return q[i].steps < q[j].steps
}
func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *queue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *queue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// ShortestPath runs Dijkstra from -> to, stopping once to is settled.
func (g *Graph) ShortestPath(from, to string) (Path, error) {
	src, err := g.Resolve(from)
	if err != nil {
		return Path{}, err
	}
	dst, err := g.Resolve(to)
	if err != nil {
		return Path{}, err
	}
	return g.shortest(src, dst)
}

func (g *Graph) shortest(src, dst string) (Path, error) {
	if src == dst {
		return Path{}, nil
	}
	dist := map[string]int{src: 0}
	prev := make(map[string]Leg)
	q := &queue{{name: src}}
	for q.Len() > 0 {
		u := heap.Pop(q).(*node)
		if u.name == dst {
			break
		}
		if u.steps > dist[u.name] {
			continue
		}
		for _, l := range g.adj[u.name] {
			alt := u.steps + l.Steps
			if d, ok := dist[l.To]; !ok || alt < d {
				dist[l.To] = alt
				prev[l.To] = l
				heap.Push(q, &node{name: l.To, steps: alt})
			}
		}
	}
	if _, ok := prev[dst]; !ok {
		return Path{}, fmt.Errorf("route: %s to %s: %w", src, dst, ErrUnreachable)
	}
	var legs []Leg
	for at := dst; at != src; {
		l := prev[at]
		legs = append(legs, l)
		at = l.From
	}
	p := Path{Legs: make([]Leg, 0, len(legs))}
	for i := len(legs) - 1; i >= 0; i-- {
		p.Legs = append(p.Legs, legs[i])
		p.Steps += legs[i].Steps
		if legs[i].Teleport {
			p.Teleports++
		}
	}
	return p, nil
}

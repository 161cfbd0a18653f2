package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cory-johannsen/walkscape/internal/game/attribute"
	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/metrics"
	"github.com/cory-johannsen/walkscape/internal/game/optimizer"
	"github.com/cory-johannsen/walkscape/internal/game/route"
)

// Renderer formats domain values as text.
type Renderer struct {
	Palette
}

// New returns a Renderer; color enables ANSI styling.
func New(color bool) Renderer {
	return Renderer{Palette{Color: color}}
}

// FormatStat formats a scaled stat value: percentage attributes as percent,
// everything else as a plain number.
func FormatStat(name string, v float64) string {
	if attribute.IsPercentage(name) {
		return trimZeros(fmt.Sprintf("%.2f", v*100)) + "%"
	}
	return trimZeros(fmt.Sprintf("%.2f", v))
}

// FormatMetric formats a metric value. Infinities print as "inf".
func FormatMetric(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.Abs(v) < 0.01 && v != 0:
		return fmt.Sprintf("%.6f", v)
	}
	return trimZeros(fmt.Sprintf("%.2f", v))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func width(names []string) int {
	w := 0
	for _, n := range names {
		w = max(w, len(n))
	}
	return w
}

// Stats renders aggregated stats in catalog order with display names. Zero
// entries are omitted.
func (r Renderer) Stats(title string, s map[string]float64) string {
	var b strings.Builder
	b.WriteString(r.Colorize(BrightWhite, "=== "+title+" ==="))
	b.WriteString("\n")

	var names, labels []string
	seen := make(map[string]bool)
	for _, a := range attribute.All() {
		seen[a.InternalName] = true
		if s[a.InternalName] != 0 {
			names = append(names, a.InternalName)
			labels = append(labels, a.DisplayName)
		}
	}
	for _, k := range sortedKeys(s) {
		if !seen[k] && s[k] != 0 {
			names = append(names, k)
			labels = append(labels, k)
		}
	}
	if len(names) == 0 {
		b.WriteString(r.Colorize(Dim, "  (no stats)"))
		b.WriteString("\n")
		return b.String()
	}
	w := width(labels)
	for i, n := range names {
		fmt.Fprintf(&b, "  %-*s  %s\n", w, labels[i], FormatStat(n, s[n]))
	}
	return b.String()
}

// Metrics renders a metric map sorted by name.
func (r Renderer) Metrics(title string, m map[string]float64) string {
	var b strings.Builder
	b.WriteString(r.Colorize(BrightWhite, "=== "+title+" ==="))
	b.WriteString("\n")
	keys := sortedKeys(m)
	w := width(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-*s  %s\n", w, k, FormatMetric(m[k]))
	}
	return b.String()
}

// Gearset renders every occupied slot in slot order.
func (r Renderer) Gearset(g *gearset.Gearset) string {
	var b strings.Builder
	b.WriteString(r.Colorize(BrightWhite, "=== Gearset ==="))
	b.WriteString("\n")
	if g.Len() == 0 {
		b.WriteString(r.Colorize(Dim, "  (empty)"))
		b.WriteString("\n")
		return b.String()
	}
	for _, s := range g.Occupied() {
		fmt.Fprintf(&b, "  %-9s %s\n", s, r.Colorize(Cyan, g.Get(s).Name))
	}
	return b.String()
}

// delta colours an improvement green and a regression red.
func (r Renderer) delta(higher bool, base, got float64) string {
	d := got - base
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return ""
	}
	sign := "+"
	if d < 0 {
		sign = ""
	}
	text := fmt.Sprintf("(%s%s)", sign, FormatMetric(d))
	if (d > 0) == higher {
		return r.Colorize(Green, text)
	}
	return r.Colorize(Red, text)
}

// Outcome renders an optimisation result: gearset, ranking metrics with the
// change from the equipped baseline, and search status.
func (r Renderer) Outcome(out *optimizer.Outcome) string {
	var b strings.Builder
	b.WriteString(r.Gearset(out.Gearset))

	b.WriteString(r.Colorize(BrightWhite, "=== Ranking ==="))
	b.WriteString("\n")
	names := make([]string, 0, len(out.Ranking))
	for _, c := range out.Ranking {
		names = append(names, c.String())
	}
	w := width(names)
	for i, c := range out.Ranking {
		v, ok := out.Metrics[c.Metric]
		if !ok {
			fmt.Fprintf(&b, "  %-*s  %s\n", w, names[i], r.Colorize(Dim, "n/a"))
			continue
		}
		line := fmt.Sprintf("  %-*s  %s", w, names[i], FormatMetric(v))
		if base, ok := out.Baseline[c.Metric]; ok {
			if d := r.delta(c.HigherIsBetter, base, v); d != "" {
				line += " " + d
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	status := "converged"
	if !out.Converged {
		status = "iteration limit reached"
	}
	fmt.Fprintf(&b, "  %d swaps, %s\n", out.Iterations, status)
	if out.Repaired {
		b.WriteString(r.Colorize(Yellow, "  repaired to meet keyword requirements"))
		b.WriteString("\n")
	}
	if !out.Valid {
		b.WriteString(r.Colorize(Red, "  warning: gearset does not meet the activity requirements"))
		b.WriteString("\n")
	}
	return b.String()
}

// Comparison renders the per-attribute difference b - a between two items.
func (r Renderer) Comparison(a, bName string, sa, sb map[string]float64) string {
	var out strings.Builder
	out.WriteString(r.Colorf(BrightWhite, "=== %s vs %s ===", a, bName))
	out.WriteString("\n")

	union := make(map[string]float64)
	for k := range sa {
		union[k] = 0
	}
	for k := range sb {
		union[k] = 0
	}
	keys := sortedKeys(union)
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = attribute.DisplayName(k)
	}
	w := width(labels)
	changed := false
	for i, k := range keys {
		d := sb[k] - sa[k]
		if d == 0 {
			continue
		}
		changed = true
		color := Green
		// Fewer steps is better.
		if (d < 0) != (k == attribute.StepsAdd || k == attribute.StepsPercent) {
			color = Red
		}
		sign := "+"
		if d < 0 {
			sign = ""
		}
		fmt.Fprintf(&out, "  %-*s  %s -> %s  %s\n", w, labels[i],
			FormatStat(k, sa[k]), FormatStat(k, sb[k]),
			r.Colorize(color, sign+FormatStat(k, d)))
	}
	if !changed {
		out.WriteString(r.Colorize(Dim, "  (identical)"))
		out.WriteString("\n")
	}
	return out.String()
}

// Quality renders a quality outcome distribution in percent.
func (r Renderer) Quality(d metrics.Distribution) string {
	var b strings.Builder
	b.WriteString(r.Colorize(BrightWhite, "=== Quality ==="))
	b.WriteString("\n")
	for _, q := range item.Qualities {
		fmt.Fprintf(&b, "  %-9s %6.2f%%\n", q, d.Of(q))
	}
	return b.String()
}

// Path renders each leg of a path and its total.
func (r Renderer) Path(p route.Path) string {
	var b strings.Builder
	for i, l := range p.Legs {
		how := l.Gear
		switch {
		case l.Teleport:
			how = "teleport"
		case l.Shortcut:
			how = "shortcut " + l.Gear
		case how == "":
			how = "walk"
		}
		fmt.Fprintf(&b, "  %2d. %s -> %s  %s  %s\n", i+1, l.From,
			r.Colorize(Cyan, l.To),
			r.Colorf(BrightYellow, "%d steps", l.Steps),
			r.Colorize(Dim, "["+how+"]"))
	}
	fmt.Fprintf(&b, "  Total: %d steps", p.Steps)
	if p.Teleports > 0 {
		fmt.Fprintf(&b, ", %d teleport(s)", p.Teleports)
	}
	b.WriteString("\n")
	return b.String()
}

// Tour renders a tour: the chosen order, service visits and the legs.
func (r Renderer) Tour(t *route.Tour) string {
	var b strings.Builder
	b.WriteString(r.Colorize(BrightWhite, "=== Route ==="))
	b.WriteString("\n")
	if len(t.Order) > 0 {
		fmt.Fprintf(&b, "  Order: %s\n", strings.Join(t.Order, ", "))
	}
	needs := make([]string, 0, len(t.ServiceVisits))
	for n := range t.ServiceVisits {
		needs = append(needs, n)
	}
	sort.Strings(needs)
	for _, n := range needs {
		fmt.Fprintf(&b, "  %s at %s\n", n, t.ServiceVisits[n])
	}
	b.WriteString(r.Path(t.Path))
	return b.String()
}

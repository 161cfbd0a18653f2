package item

// HighestQuality keeps, for each crafted base item, only the best tier present
// in items. Non-crafted items pass through. Input order is preserved.
func HighestQuality(items []*Item) []*Item {
	best := make(map[string]*Item)
	for _, it := range items {
		if !it.Crafted {
			continue
		}
		if cur, ok := best[it.UUID]; !ok || it.Quality > cur.Quality {
			best[it.UUID] = it
		}
	}
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.Crafted && best[it.UUID] != it {
			continue
		}
		out = append(out, it)
	}
	return out
}

package document

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"subforge/internal/entry"
)

// Comparator orders two dialogue lines, returning a negative, zero or
// positive value.
type Comparator func(a, b *entry.Dialogue) int

// Built-in comparators.
var (
	ByStart  Comparator = func(a, b *entry.Dialogue) int { return a.Start.Compare(b.Start) }
	ByEnd    Comparator = func(a, b *entry.Dialogue) int { return a.End.Compare(b.End) }
	ByStyle  Comparator = func(a, b *entry.Dialogue) int { return strings.Compare(a.Style, b.Style) }
	ByActor  Comparator = func(a, b *entry.Dialogue) int { return strings.Compare(a.Actor, b.Actor) }
	ByEffect Comparator = func(a, b *entry.Dialogue) int { return strings.Compare(a.Effect, b.Effect) }
	ByLayer  Comparator = func(a, b *entry.Dialogue) int { return cmp.Compare(a.Layer, b.Layer) }
)

// ComparatorByName maps a sort key name onto a comparator.
func ComparatorByName(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "start", "":
		return ByStart, nil
	case "end":
		return ByEnd, nil
	case "style":
		return ByStyle, nil
	case "actor":
		return ByActor, nil
	case "effect":
		return ByEffect, nil
	case "layer":
		return ByLayer, nil
	default:
		return nil, fmt.Errorf("sort key: unsupported value %q", name)
	}
}

// Sort stably orders dialogue lines with compare. When subset is non-empty
// only those lines take part. Lines are only reordered within runs of
// consecutive participating lines; any other entry between them stays put
// and splits the runs.
func (d *Document) Sort(compare Comparator, subset ...Handle) {
	var selected map[uint32]uint32
	if len(subset) > 0 {
		selected = make(map[uint32]uint32, len(subset))
		for _, h := range subset {
			if d.live(h) {
				selected[h.slot] = h.gen
			}
		}
	}
	eligible := func(idx uint32) bool {
		if _, ok := d.slots[idx].entry.(*entry.Dialogue); !ok {
			return false
		}
		if selected == nil {
			return true
		}
		gen, ok := selected[idx]
		return ok && gen == d.slots[idx].gen
	}
	byLine := func(a, b uint32) int {
		return compare(d.slots[a].entry.(*entry.Dialogue), d.slots[b].entry.(*entry.Dialogue))
	}

	start := -1
	for i := 0; i <= len(d.order); i++ {
		if i < len(d.order) && eligible(d.order[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start > 1 {
			slices.SortStableFunc(d.order[start:i], byLine)
		}
		start = -1
	}
}

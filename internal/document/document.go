package document

import (
	"errors"
	"fmt"
	"iter"

	"subforge/internal/entry"
)

var (
	// ErrStaleHandle is returned for handles whose entry was deleted.
	ErrStaleHandle = errors.New("stale entry handle")
	// ErrGroupOrder is returned when an edit would place an entry outside its
	// section.
	ErrGroupOrder = errors.New("entry out of section order")
	// ErrLineRange is returned for line numbers outside the document.
	ErrLineRange = errors.New("line number out of range")
)

// Handle identifies an entry independently of its position. Handles stay
// valid across Clone, so a snapshot can be patched through the handle of the
// live entry. The zero Handle never refers to an entry.
type Handle struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(none)"
	}
	return fmt.Sprintf("handle(%d.%d)", h.slot, h.gen)
}

type slot struct {
	entry entry.Entry
	gen   uint32
}

// Document is an ordered script: entries grouped into sections that appear
// in Group order, each section contiguous. Entries live in an arena of slots
// addressed by Handle; order lists the occupied slots in script order.
type Document struct {
	slots []slot
	free  []uint32
	order []uint32
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.order) }

// At returns the entry at 0-based position i.
func (d *Document) At(i int) (Handle, entry.Entry) {
	idx := d.order[i]
	s := d.slots[idx]
	return Handle{slot: idx, gen: s.gen}, s.entry
}

// All yields every entry in script order.
func (d *Document) All() iter.Seq2[Handle, entry.Entry] {
	return func(yield func(Handle, entry.Entry) bool) {
		for _, idx := range d.order {
			s := d.slots[idx]
			if !yield(Handle{slot: idx, gen: s.gen}, s.entry) {
				return
			}
		}
	}
}

// Get returns the entry behind h.
func (d *Document) Get(h Handle) (entry.Entry, bool) {
	if !d.live(h) {
		return nil, false
	}
	return d.slots[h.slot].entry, true
}

// Position returns the 0-based position of h.
func (d *Document) Position(h Handle) (int, bool) {
	if !d.live(h) {
		return 0, false
	}
	for i, idx := range d.order {
		if idx == h.slot {
			return i, true
		}
	}
	return 0, false
}

func (d *Document) live(h Handle) bool {
	return h.gen != 0 && int(h.slot) < len(d.slots) && d.slots[h.slot].gen == h.gen && d.slots[h.slot].entry != nil
}

func (d *Document) alloc(e entry.Entry) Handle {
	if n := len(d.free); n > 0 {
		idx := d.free[n-1]
		d.free = d.free[:n-1]
		d.slots[idx].entry = e
		return Handle{slot: idx, gen: d.slots[idx].gen}
	}
	d.slots = append(d.slots, slot{entry: e, gen: 1})
	return Handle{slot: uint32(len(d.slots) - 1), gen: 1}
}

// insertAt places e at position pos without checking section order.
func (d *Document) insertAt(pos int, e entry.Entry) Handle {
	h := d.alloc(e)
	d.order = append(d.order, 0)
	copy(d.order[pos+1:], d.order[pos:])
	d.order[pos] = h.slot
	return h
}

// InsertLine adds e at the end of its section. It walks back from the end to
// the last entry whose group is not after e's and inserts behind it.
func (d *Document) InsertLine(e entry.Entry) Handle {
	g := e.Group()
	pos := 0
	for i := len(d.order) - 1; i >= 0; i-- {
		if d.slots[d.order[i]].entry.Group() <= g {
			pos = i + 1
			break
		}
	}
	return d.insertAt(pos, e)
}

// InsertAfter places e directly after h. The placement must keep sections in
// order.
func (d *Document) InsertAfter(h Handle, e entry.Entry) (Handle, error) {
	pos, ok := d.Position(h)
	if !ok {
		return Handle{}, ErrStaleHandle
	}
	if !d.fits(pos+1, e.Group()) {
		return Handle{}, fmt.Errorf("insert %s entry after %s: %w", e.Group(), h, ErrGroupOrder)
	}
	return d.insertAt(pos+1, e), nil
}

// fits reports whether an entry of group g may be inserted at pos.
func (d *Document) fits(pos int, g entry.Group) bool {
	if pos > 0 && d.slots[d.order[pos-1]].entry.Group() > g {
		return false
	}
	if pos < len(d.order) && d.slots[d.order[pos]].entry.Group() < g {
		return false
	}
	return true
}

// Replace swaps the entry behind h. The new entry must belong to the same
// group.
func (d *Document) Replace(h Handle, e entry.Entry) error {
	old, ok := d.Get(h)
	if !ok {
		return ErrStaleHandle
	}
	if old.Group() != e.Group() {
		return fmt.Errorf("replace %s entry with %s entry: %w", old.Group(), e.Group(), ErrGroupOrder)
	}
	d.slots[h.slot].entry = e
	return nil
}

// Delete removes the entry behind h. The handle, and any copy of it, goes
// stale.
func (d *Document) Delete(h Handle) error {
	pos, ok := d.Position(h)
	if !ok {
		return ErrStaleHandle
	}
	d.order = append(d.order[:pos], d.order[pos+1:]...)
	d.release(h.slot)
	return nil
}

func (d *Document) release(idx uint32) {
	d.slots[idx].entry = nil
	d.slots[idx].gen++
	d.free = append(d.free, idx)
}

// Clear removes every entry.
func (d *Document) Clear() {
	for _, idx := range d.order {
		d.release(idx)
	}
	d.order = d.order[:0]
}

// Clone returns a deep copy. Handles of d address the same entries in the
// copy.
func (d *Document) Clone() *Document {
	out := &Document{
		slots: make([]slot, len(d.slots)),
		free:  append([]uint32(nil), d.free...),
		order: append([]uint32(nil), d.order...),
	}
	for i, s := range d.slots {
		out.slots[i].gen = s.gen
		if s.entry != nil {
			out.slots[i].entry = s.entry.Clone()
		}
	}
	return out
}

// Assign replaces the contents of d with a deep copy of src.
func (d *Document) Assign(src *Document) {
	*d = *src.Clone()
}

// CheckGroups verifies that sections are contiguous and in order.
func (d *Document) CheckGroups() error {
	prev := entry.Group(-1)
	for i, idx := range d.order {
		g := d.slots[idx].entry.Group()
		if g < prev {
			return fmt.Errorf("line %d: %s entry after %s section: %w", i+1, g, prev, ErrGroupOrder)
		}
		prev = g
	}
	return nil
}

// Line returns the entry at 1-based line n.
func (d *Document) Line(n int) (Handle, entry.Entry, error) {
	if n < 1 || n > len(d.order) {
		return Handle{}, nil, fmt.Errorf("line %d of %d: %w", n, len(d.order), ErrLineRange)
	}
	h, e := d.At(n - 1)
	return h, e, nil
}

// InsertAtLine inserts e so it becomes line n, shifting later lines down.
// n may be one past the last line.
func (d *Document) InsertAtLine(n int, e entry.Entry) (Handle, error) {
	if n < 1 || n > len(d.order)+1 {
		return Handle{}, fmt.Errorf("insert at line %d of %d: %w", n, len(d.order), ErrLineRange)
	}
	if !d.fits(n-1, e.Group()) {
		return Handle{}, fmt.Errorf("insert %s entry at line %d: %w", e.Group(), n, ErrGroupOrder)
	}
	return d.insertAt(n-1, e), nil
}

// SetLine replaces line n with e, which must belong to the same group.
func (d *Document) SetLine(n int, e entry.Entry) error {
	h, _, err := d.Line(n)
	if err != nil {
		return err
	}
	return d.Replace(h, e)
}

// DeleteLine removes line n.
func (d *Document) DeleteLine(n int) error {
	h, _, err := d.Line(n)
	if err != nil {
		return err
	}
	return d.Delete(h)
}

// AppendLine adds e as the last line. It fails when e's section would end
// up before an existing later section; use InsertLine to place by section.
func (d *Document) AppendLine(e entry.Entry) (Handle, error) {
	return d.InsertAtLine(len(d.order)+1, e)
}

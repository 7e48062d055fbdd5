package gallery

import (
	"encoding/json"
	"fmt"

	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
)

// DragSession is the transient state between pointer-down and pointer-up on one item.
type DragSession struct {
	Source    int     `json:"source"`
	Candidate int     `json:"candidate"`
	PointerX  float64 `json:"pointerX"`
	PointerY  float64 `json:"pointerY"`
	OffsetX   float64 `json:"offsetX"`
	OffsetY   float64 `json:"offsetY"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// Collection owns the committed order of a gallery, its cover selection and at most
// one drag session. The committed order only changes through Append, Remove, Reorder
// and a committing PointerUp.
type Collection struct {
	items          []Item
	representative *Ref
	drag           *DragSession
}

// NewCollection builds a collection from items in order. The first item becomes the
// representative.
func NewCollection(items ...Item) (*Collection, error) {
	c := &Collection{}
	if err := c.Append(items...); err != nil {
		return nil, err
	}
	return c, nil
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Items returns a copy of the committed order.
func (c *Collection) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the item with the given id.
func (c *Collection) Item(id string) (Item, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

// Append adds items at the end. Ids must be non-empty and unique across the collection.
func (c *Collection) Append(items ...Item) error {
	seen := make(map[string]struct{}, len(c.items)+len(items))
	for _, item := range c.items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range items {
		if !item.Kind.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item kind %q", item.Kind))
		}
		if item.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
		}
		if _, dup := seen[item.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate item id %q", item.ID))
		}
		seen[item.ID] = struct{}{}
	}
	c.items = append(c.items, items...)
	c.repair()
	return nil
}

// Remove deletes the item with the given id. A live drag is discarded first.
func (c *Collection) Remove(id string) (Item, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "gallery item not found")
	}
	c.drag = nil
	removed := c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	c.repair()
	return removed, nil
}

// Representative returns the cover item, if any.
func (c *Collection) Representative() (Item, bool) {
	if c.representative == nil {
		return Item{}, false
	}
	return c.Item(c.representative.ID)
}

// SetRepresentative points the cover selection at the item with the given id.
func (c *Collection) SetRepresentative(id string) error {
	item, ok := c.Item(id)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gallery item not found")
	}
	ref := item.Ref()
	c.representative = &ref
	return nil
}

// repair keeps the representative pointing at a live item: it falls back to the first
// item, or to none when the collection is empty.
func (c *Collection) repair() {
	if c.representative != nil {
		if i := c.indexOf(c.representative.ID); i >= 0 && c.items[i].Kind == c.representative.Kind {
			return
		}
	}
	if len(c.items) == 0 {
		c.representative = nil
		return
	}
	ref := c.items[0].Ref()
	c.representative = &ref
}

// Reorder moves the item at from using the same target normalization as a pointer
// drop. It reports whether the committed order changed.
func (c *Collection) Reorder(from, to int) bool {
	if from < 0 || from >= len(c.items) {
		return false
	}
	c.drag = nil
	if NormalizeDropIndex(from, to, len(c.items)) == from {
		return false
	}
	c.items = Reorder(c.items, from, to)
	return true
}

// PointerDown starts a drag on the item at index. Any session already open is
// discarded without committing.
func (c *Collection) PointerDown(index int, pointerX, pointerY float64, box Box) (DragSession, error) {
	c.drag = nil
	if index < 0 || index >= len(c.items) {
		return DragSession{}, pkgerrors.New(pkgerrors.CodeValidation, "drag index out of range")
	}
	c.drag = &DragSession{
		Source:    index,
		Candidate: index,
		PointerX:  pointerX,
		PointerY:  pointerY,
		OffsetX:   pointerX - box.Left,
		OffsetY:   pointerY - box.Top,
		Width:     box.Width,
		Height:    box.Height,
	}
	return *c.drag, nil
}

// PointerMove records the pointer and recomputes the drop candidate from the boxes of
// the other items. Boxes naming an index outside the collection are stale and ignored.
// With nothing else on screen the candidate stays where it was.
func (c *Collection) PointerMove(x, y float64, boxes []Box) (DragSession, bool) {
	if c.drag == nil {
		return DragSession{}, false
	}
	c.drag.PointerX, c.drag.PointerY = x, y

	others := make([]Box, 0, len(boxes))
	for _, box := range boxes {
		if box.Index < 0 || box.Index >= len(c.items) || box.Index == c.drag.Source {
			continue
		}
		others = append(others, box)
	}
	if len(others) > 0 {
		c.drag.Candidate = ResolveDropIndex(x, y, others, len(c.items))
	}
	return *c.drag, true
}

// PointerUp ends the drag. It reports whether a reorder was committed.
func (c *Collection) PointerUp() bool {
	if c.drag == nil {
		return false
	}
	session := *c.drag
	c.drag = nil
	if NormalizeDropIndex(session.Source, session.Candidate, len(c.items)) == session.Source {
		return false
	}
	c.items = Reorder(c.items, session.Source, session.Candidate)
	return true
}

// Cancel drops the drag session, leaving the committed order untouched.
func (c *Collection) Cancel() bool {
	open := c.drag != nil
	c.drag = nil
	return open
}

// Dragging returns the live drag session, if one is open.
func (c *Collection) Dragging() (DragSession, bool) {
	if c.drag == nil {
		return DragSession{}, false
	}
	return *c.drag, true
}

// Display projects the committed order for rendering. During a drag the source is
// lifted out and a placeholder marks the live target; the committed order is not touched.
func (c *Collection) Display() []Slot {
	if c.drag == nil || c.drag.Candidate == c.drag.Source {
		slots := make([]Slot, len(c.items))
		for i := range c.items {
			item := c.items[i]
			slots[i] = Slot{Item: &item, OriginalIndex: i}
		}
		return slots
	}

	source, candidate := c.drag.Source, c.drag.Candidate
	remaining := len(c.items) - 1
	insert := candidate
	if candidate > source {
		insert--
	}
	insert = max(0, min(insert, remaining))
	placeholder := Slot{Placeholder: true, OriginalIndex: -1, TargetIndex: candidate}

	slots := make([]Slot, 0, len(c.items))
	pos := 0
	for i := range c.items {
		if i == source {
			continue
		}
		if pos == insert {
			slots = append(slots, placeholder)
		}
		item := c.items[i]
		slots = append(slots, Slot{Item: &item, OriginalIndex: i})
		pos++
	}
	if insert >= remaining {
		slots = append(slots, placeholder)
	}
	return slots
}

func (c *Collection) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

type collectionState struct {
	Items          []Item       `json:"items"`
	Representative *Ref         `json:"representative,omitempty"`
	Drag           *DragSession `json:"drag,omitempty"`
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(collectionState{Items: items, Representative: c.representative, Drag: c.drag})
}

// UnmarshalJSON restores a persisted collection, re-checking id uniqueness and
// repairing the representative and drag session if they no longer fit.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var state collectionState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	restored := &Collection{representative: state.Representative}
	if err := restored.Append(state.Items...); err != nil {
		return err
	}
	if d := state.Drag; d != nil && d.Source >= 0 && d.Source < len(restored.items) {
		drag := *d
		drag.Candidate = max(0, min(drag.Candidate, len(restored.items)))
		restored.drag = &drag
	}
	*c = *restored
	return nil
}

package gallery

// Box is the on-screen rectangle of one rendered item. Index is the item's position
// in the full collection, so boxes may skip the item being dragged.
type Box struct {
	Index  int     `json:"index"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Right() float64  { return b.Left + b.Width }
func (b Box) Bottom() float64 { return b.Top + b.Height }

func (b Box) contains(x, y float64) bool {
	return x >= b.Left && x <= b.Right() && y >= b.Top && y <= b.Bottom()
}

func (b Box) withinRow(y float64) bool {
	return y >= b.Top && y <= b.Bottom()
}

// sideOf inserts after the box when the pointer is past its horizontal midpoint.
func (b Box) sideOf(x float64) int {
	if x > b.Left+b.Width/2 {
		return b.Index + 1
	}
	return b.Index
}

func (b Box) distanceSq(x, y float64) float64 {
	dx := x - (b.Left + b.Width/2)
	dy := y - (b.Top + b.Height/2)
	return dx*dx + dy*dy
}

// ResolveDropIndex returns where the dragged item would land if released at (x, y),
// always within [0, itemCount]. boxes must be in display order and exclude the
// dragged item. With no boxes measured the item is appended, so the result is
// itemCount. A lone item never gets here: Collection.PointerMove keeps the
// candidate on the source when no other box is on screen.
func ResolveDropIndex(x, y float64, boxes []Box, itemCount int) int {
	if len(boxes) == 0 {
		return max(0, itemCount)
	}
	return max(0, min(resolveDropIndex(x, y, boxes, itemCount), itemCount))
}

func resolveDropIndex(x, y float64, boxes []Box, itemCount int) int {

	first, last := boxes[0], boxes[len(boxes)-1]
	switch {
	case y < first.Top:
		return 0
	case y > last.Bottom():
		return itemCount
	case last.withinRow(y) && x > last.Right():
		return itemCount
	case first.withinRow(y) && x < first.Left:
		return 0
	}

	for _, box := range boxes {
		if box.contains(x, y) {
			return box.sideOf(x)
		}
	}

	closest, ok := closestBox(x, y, boxes)
	if !ok {
		return itemCount
	}
	return closest.sideOf(x)
}

// ClosestIndex returns the Index of the box whose centre is nearest to (x, y), or -1
// when there are no boxes. Ties go to the earlier box.
func ClosestIndex(x, y float64, boxes []Box) int {
	closest, ok := closestBox(x, y, boxes)
	if !ok {
		return -1
	}
	return closest.Index
}

func closestBox(x, y float64, boxes []Box) (Box, bool) {
	var (
		best  Box
		found bool
		bestD float64
	)
	for _, box := range boxes {
		d := box.distanceSq(x, y)
		if !found || d < bestD {
			best, bestD, found = box, d, true
		}
	}
	return best, found
}

package gallery

import "fmt"

// Kind tags where an item came from.
type Kind string

const (
	// KindExisting is an image already stored upstream, identified by its storage URL.
	KindExisting Kind = "existing"
	// KindNew is a file attached in this session, identified by a generated id.
	KindNew Kind = "new"
)

var validKinds = []Kind{KindExisting, KindNew}

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	for _, candidate := range validKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseKind converts a raw string into a Kind.
func ParseKind(value string) (Kind, error) {
	for _, candidate := range validKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gallery item kind %q", value)
}

// Item is one image taking part in the gallery order.
type Item struct {
	Kind    Kind   `json:"kind"`
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

// Ref identifies an item by kind and id.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (i Item) Ref() Ref { return Ref{Kind: i.Kind, ID: i.ID} }

// Slot is one cell of the display projection. Placeholder slots carry no item and
// report the live drop target instead.
type Slot struct {
	Placeholder   bool  `json:"placeholder"`
	Item          *Item `json:"item,omitempty"`
	OriginalIndex int   `json:"originalIndex"`
	TargetIndex   int   `json:"targetIndex,omitempty"`
}

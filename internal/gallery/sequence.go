package gallery

// NormalizeDropIndex turns a "drop before position to" target measured against the
// full sequence into the insertion index after the source has been removed.
func NormalizeDropIndex(from, to, length int) int {
	clamped := max(0, min(to, length))
	if from < clamped {
		return clamped - 1
	}
	return clamped
}

// Reorder returns a copy of items with the element at from moved to the normalized
// target. Out-of-range sources return an unchanged copy.
func Reorder[T any](items []T, from, to int) []T {
	next := make([]T, len(items))
	copy(next, items)
	if from < 0 || from >= len(items) {
		return next
	}

	target := NormalizeDropIndex(from, to, len(items))
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next, moved)
	copy(next[target+1:], next[target:len(next)-1])
	next[target] = moved
	return next
}

// ShiftIndex recomputes a positional selection after moving from to to.
func ShiftIndex(index, from, to, length int) int {
	target := NormalizeDropIndex(from, to, length)
	switch {
	case from == index:
		return target
	case from < index && target >= index:
		return index - 1
	case from > index && target <= index:
		return index + 1
	}
	return index
}

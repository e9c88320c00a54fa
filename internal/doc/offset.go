package doc

import "errors"

// ErrNotFound reports that a fragment does not belong to the container's
// current arena, typically because the arena was rebuilt underneath a stale
// reference.
var ErrNotFound = errors.New("doc: fragment not in container")

// OffsetOf converts a (fragment, local offset) pair into a linear offset
// inside the container by accumulating the lengths of all prior fragments.
func (c *Container) OffsetOf(target *Fragment, local int) (int, error) {
	if local < 0 {
		local = 0
	}
	total := 0
	for _, f := range c.fragments {
		if f == target {
			length := len(f.Text())
			if local > length {
				local = length
			}
			return total + local, nil
		}
		total += len(f.Text())
	}
	return 0, ErrNotFound
}

// Locate converts a linear offset back into a (fragment, local offset) pair
// by walking fragments in order and spending the offset against each
// fragment's length. The boundary offset at the very end of a fragment
// resolves into that fragment, so Locate(Len()) lands at the end of the last
// fragment. Returns false when the offset exceeds the total text length;
// callers treat that as "no longer representable". An empty container has no
// fragment to resolve into, so every offset there, including 0, returns
// false.
func (c *Container) Locate(off int) (*Fragment, int, bool) {
	if off < 0 {
		return nil, 0, false
	}
	remaining := off
	for i, f := range c.fragments {
		length := len(f.Text())
		if remaining < length || (remaining == length && i == len(c.fragments)-1) {
			return f, remaining, true
		}
		remaining -= length
	}
	return nil, 0, false
}

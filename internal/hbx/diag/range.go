package diag

// Ranger wraps the Range method.
type Ranger interface {
	// Range returns the range associated with the value.
	Range() Ranging
}

// Ranging represents a byte range [From, To) within a template source.
// Structs can embed Ranging to satisfy the [Ranger] interface.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// PointRanging returns a zero-width Ranging at the given point.
func PointRanging(p int) Ranging {
	return Ranging{p, p}
}

// Shift returns r moved by off bytes.
func (r Ranging) Shift(off int) Ranging {
	return Ranging{r.From + off, r.To + off}
}

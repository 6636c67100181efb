package activity

// Optional holds a value or its explicit absence. A present zero is
// distinct from absence.
type Optional[T any] struct {
	v  T
	ok bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{v: v, ok: true} }

// None returns an absent value.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }

// Present reports whether o holds a value.
func (o Optional[T]) Present() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

package relaywire

// Optional holds a value that may be absent. Absent and present-but-empty are
// different states: an absent optional field is omitted from encoded output,
// while Some([]Entity{}) is encoded as an empty array.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{value: v, present: true} }

// None returns an absent Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.present }

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool { return o.present }

// OrElse returns the held value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}


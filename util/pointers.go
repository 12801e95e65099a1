package util

// Ptr returns a pointer to v. Config sections use it for optional fields
// whose zero value is itself a meaningful setting, such as enabled flags
// that default to true.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value p points to, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}

package groovy

// lazy holds a value that is computed on first use and kept until
// invalidated. The zero value is absent.
type lazy[T any] struct {
	value     T
	populated bool
}

func (l *lazy[T]) get(compute func() T) T {
	if !l.populated {
		l.value = compute()
		l.populated = true
	}
	return l.value
}

func (l *lazy[T]) invalidate() {
	var zero T
	l.value = zero
	l.populated = false
}

func (l *lazy[T]) isPopulated() bool {
	return l.populated
}

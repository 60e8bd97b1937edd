package core

import (
	"golang.org/x/exp/constraints"
)

// Series is an ordered sequence of values aligned with a bar window
type Series[T constraints.Ordered] []T

// Values returns the underlying slice of values
func (s Series[T]) Values() []T {
	return s
}

// Length returns the number of values in the series
func (s Series[T]) Length() int {
	return len(s)
}

// Last returns the value at a specified position from the end
// position 0 is the last value, 1 is the second-to-last, etc.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns a slice with the last 'size' values
// If size exceeds the length, returns the entire series
func (s Series[T]) LastValues(size int) Series[T] {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Max returns the largest value, or the zero value for an empty series
func (s Series[T]) Max() T {
	var max T
	for i, v := range s {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// Min returns the smallest value, or the zero value for an empty series
func (s Series[T]) Min() T {
	var min T
	for i, v := range s {
		if i == 0 || v < min {
			min = v
		}
	}
	return min
}

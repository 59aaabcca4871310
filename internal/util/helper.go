// Package util contains small generic helpers shared by the packages of the module.
package util

// CloneSlice returns a copy of src with length cloneSize.
//
// The length of src is used when cloneSize is 0. A longer cloneSize pads the copy with zero values,
// a shorter one truncates it.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}

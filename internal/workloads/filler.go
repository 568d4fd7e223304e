// internal/workloads/filler.go
// Package: workloads
package workloads

const filler = `The quick brown fox jumps over the lazy dog while the benchmark counts every hop. This text is neutral input of a controlled length for hashing and string building. `

// Filler returns deterministic text of exactly chars bytes.
func Filler(chars int) string {
	if chars <= 0 {
		return ""
	}
	base := filler
	for len(base) < chars {
		base += filler
	}
	return base[:chars]
}

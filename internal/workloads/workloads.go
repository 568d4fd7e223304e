// internal/workloads/workloads.go
// Package: workloads

// Package workloads is the catalogue of compiled-in workload kernels. A kernel
// is a factory that builds a bench.Func for a given problem size; inputs are
// prepared once by the factory so only the kernel body is measured.
package workloads

import (
	"crypto/sha256"
	"encoding/json"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"

	"github.com/mwiater/opsbench/internal/bench"
)

// Kernel describes one built-in workload.
type Kernel struct {
	Name        string
	Description string
	DefaultSize int
	New         func(size int) bench.Func
}

var catalogue = []Kernel{
	{
		Name:        "sum-loop",
		Description: "sum the integers 0..size-1",
		DefaultSize: 1_000_000,
		New:         sumLoop,
	},
	{
		Name:        "noop",
		Description: "return a constant; probes clock resolution and call overhead",
		DefaultSize: 1,
		New:         func(int) bench.Func { return func() float64 { return 1 } },
	},
	{
		Name:        "sha256",
		Description: "SHA-256 digest of size bytes of text",
		DefaultSize: 4096,
		New:         sha256Digest,
	},
	{
		Name:        "json",
		Description: "marshal and unmarshal a list of size records",
		DefaultSize: 64,
		New:         jsonRoundTrip,
	},
	{
		Name:        "sort",
		Description: "sort a copy of size shuffled integers",
		DefaultSize: 10_000,
		New:         sortInts,
	},
	{
		Name:        "map",
		Description: "insert size integer keys into a fresh map",
		DefaultSize: 10_000,
		New:         mapInsert,
	},
	{
		Name:        "strings",
		Description: "build a string from size fragments",
		DefaultSize: 1_000,
		New:         buildString,
	},
}

// All returns the catalogue in display order.
func All() []Kernel {
	return slices.Clone(catalogue)
}

// Lookup finds a kernel by name.
func Lookup(name string) (Kernel, bool) {
	for _, k := range catalogue {
		if k.Name == name {
			return k, true
		}
	}
	return Kernel{}, false
}

// Names lists the kernel names.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, k := range catalogue {
		names[i] = k.Name
	}
	return names
}

func sumLoop(n int) bench.Func {
	return func() float64 {
		var s int64
		for i := 0; i < n; i++ {
			s += int64(i)
		}
		return float64(s)
	}
}

func sha256Digest(n int) bench.Func {
	data := []byte(Filler(n))
	return func() float64 {
		sum := sha256.Sum256(data)
		return float64(sum[0])
	}
}

type record struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Tags  []string `json:"tags"`
}

func jsonRoundTrip(n int) bench.Func {
	records := make([]record, n)
	for i := range records {
		records[i] = record{
			ID:    i,
			Name:  "record-" + strconv.Itoa(i),
			Score: float64(i) * 0.5,
			Tags:  []string{"alpha", "beta"},
		}
	}
	return roundTrip(records)
}

// roundTrip marshals v and decodes it into a fresh T. An encoding failure
// yields NaN so the sampler rejects the kernel instead of timing a no-op.
func roundTrip[T any](v T) bench.Func {
	return func() float64 {
		b, err := json.Marshal(v)
		if err != nil {
			return math.NaN()
		}
		var out T
		if err := json.Unmarshal(b, &out); err != nil {
			return math.NaN()
		}
		return float64(len(b))
	}
}

func sortInts(n int) bench.Func {
	rng := rand.New(rand.NewSource(1))
	input := rng.Perm(n)
	scratch := make([]int, n)
	return func() float64 {
		copy(scratch, input)
		slices.Sort(scratch)
		if n == 0 {
			return 0
		}
		return float64(scratch[n/2])
	}
}

func mapInsert(n int) bench.Func {
	return func() float64 {
		m := make(map[int]int)
		for i := 0; i < n; i++ {
			m[i] = i
		}
		return float64(len(m))
	}
}

func buildString(n int) bench.Func {
	fragment := Filler(16)
	return func() float64 {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(fragment)
		}
		return float64(b.Len())
	}
}

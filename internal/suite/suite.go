// internal/suite/suite.go
// Package: suite

// Package suite resolves workload definitions into bench.Workloads. A
// definition names a built-in kernel, an optional size and optional
// per-workload options that override the run-level defaults.
package suite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/opsbench/internal/bench"
	"github.com/mwiater/opsbench/internal/workloads"
)

// Definition is one entry of a suite file.
type Definition struct {
	// Name is optional and defaults to "<kernel>/<size>".
	Name    string          `yaml:"name"`
	Kernel  string          `yaml:"kernel"`
	Size    *int            `yaml:"size"`
	Options bench.Overrides `yaml:"options"`
}

// File is the decoded form of a suite file.
type File struct {
	Workloads []Definition `yaml:"workloads"`
}

// Provider supplies the workloads of a run. Implementations resolve and
// validate everything before returning; nothing is measured here.
type Provider interface {
	Workloads(ctx context.Context) ([]bench.Workload, error)
}

// Parse decodes a suite file. Unknown keys are rejected.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, errors.New("suite is empty")
		}
		return File{}, fmt.Errorf("could not parse suite YAML: %w", err)
	}
	if len(f.Workloads) == 0 {
		return File{}, errors.New("suite must declare at least one workload")
	}
	return f, nil
}

// Resolve turns definitions into validated workloads, in declaration order.
func Resolve(defs []Definition, defaults bench.Options) ([]bench.Workload, error) {
	out := make([]bench.Workload, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		w, err := resolveOne(def, defaults)
		if err != nil {
			return nil, err
		}
		if seen[w.Name] {
			return nil, &bench.ConfigError{Workload: w.Name, Field: "name", Reason: "declared more than once (entry " + strconv.Itoa(i+1) + ")"}
		}
		seen[w.Name] = true
		out = append(out, w)
	}
	return out, nil
}

func resolveOne(def Definition, defaults bench.Options) (bench.Workload, error) {
	label := def.Name
	if label == "" {
		label = def.Kernel
	}

	kernel, ok := workloads.Lookup(def.Kernel)
	if !ok {
		return bench.Workload{}, &bench.ConfigError{
			Workload: label,
			Field:    "kernel",
			Reason:   fmt.Sprintf("unknown kernel %q (available: %s)", def.Kernel, strings.Join(workloads.Names(), ", ")),
		}
	}

	size := kernel.DefaultSize
	if def.Size != nil {
		size = *def.Size
	}
	if size <= 0 {
		return bench.Workload{}, &bench.ConfigError{Workload: label, Field: "size", Reason: "must be greater than 0"}
	}

	name := def.Name
	if name == "" {
		name = kernel.Name + "/" + strconv.Itoa(size)
	}

	w := bench.Workload{
		Name:    name,
		Options: defaults.Merge(def.Options),
		Invoke:  kernel.New(size),
	}
	if err := w.Validate(); err != nil {
		return bench.Workload{}, err
	}
	return w, nil
}

// FileProvider reads one or more suite files. Files are read and resolved
// concurrently; workloads come back in argument order, then declaration order.
type FileProvider struct {
	Paths    []string
	Defaults bench.Options
}

func (p FileProvider) Workloads(ctx context.Context) ([]bench.Workload, error) {
	perFile := make([][]bench.Workload, len(p.Paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range p.Paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ws, err := loadFile(path, p.Defaults)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			perFile[i] = ws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []bench.Workload
	seen := make(map[string]string)
	for i, ws := range perFile {
		for _, w := range ws {
			if first, dup := seen[w.Name]; dup {
				return nil, &bench.ConfigError{Workload: w.Name, Field: "name", Reason: "declared in both " + first + " and " + p.Paths[i]}
			}
			seen[w.Name] = p.Paths[i]
			all = append(all, w)
		}
	}
	return all, nil
}

func loadFile(path string, defaults bench.Options) ([]bench.Workload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read suite file: %w", err)
	}
	f, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return Resolve(f.Workloads, defaults)
}

// KernelProvider runs a single built-in kernel without a suite file.
type KernelProvider struct {
	Kernel   string
	Size     int
	Defaults bench.Options
}

func (p KernelProvider) Workloads(context.Context) ([]bench.Workload, error) {
	def := Definition{Kernel: p.Kernel}
	if p.Size != 0 {
		size := p.Size
		def.Size = &size
	}
	return Resolve([]Definition{def}, p.Defaults)
}

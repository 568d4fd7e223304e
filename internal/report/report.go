// internal/report/report.go
// Package: report

// Package report formats measured results as text lines or a JSON document.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/opsbench/internal/bench"
)

// Line renders r as
//
//	<name>: <ops> ops/sec (±<margin>, p=<significance>, n=<retained>[, o=<outliers>/<severe>])
//
// The outlier part is present only when at least one outlier was found.
func Line(r bench.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %.1f ops/sec (±%.1f, p=%s, n=%d", r.Name, r.OpsPerSecond, r.ErrorMargin, formatSignificance(r.Significance), r.Retained)
	if r.Outliers > 0 {
		fmt.Fprintf(&b, ", o=%d/%d", r.Outliers, r.SevereOutliers)
	}
	b.WriteString(")")
	return b.String()
}

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	rateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	outlierStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// StyledLine is Line with terminal colors. Stripped of escape codes it reads
// exactly like Line.
func StyledLine(r bench.Result) string {
	var b strings.Builder
	b.WriteString(nameStyle.Render(r.Name + ":"))
	b.WriteString(" ")
	b.WriteString(rateStyle.Render(fmt.Sprintf("%.1f ops/sec", r.OpsPerSecond)))
	b.WriteString(" ")
	b.WriteString(detailStyle.Render(fmt.Sprintf("(±%.1f, p=%s, n=%d", r.ErrorMargin, formatSignificance(r.Significance), r.Retained)))
	if r.Outliers > 0 {
		b.WriteString(detailStyle.Render(", "))
		b.WriteString(outlierStyle.Render(fmt.Sprintf("o=%d/%d", r.Outliers, r.SevereOutliers)))
	}
	b.WriteString(detailStyle.Render(")"))
	return b.String()
}

// Formatter returns StyledLine or Line.
func Formatter(styled bool) func(bench.Result) string {
	if styled {
		return StyledLine
	}
	return Line
}

func formatSignificance(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// Number is a float64 that survives JSON encoding when it is infinite or NaN;
// such values are written as the strings "+Inf", "-Inf" and "NaN".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Fit mirrors bench.Fit.
type Fit struct {
	Intercept        Number `json:"intercept"`
	Slope            Number `json:"slope"`
	StandardError    Number `json:"standardError"`
	ConfidenceRadius Number `json:"confidenceRadius"`
	N                int    `json:"n"`
}

// Entry is one measured workload.
type Entry struct {
	Name           string            `json:"name"`
	OpsPerSecond   Number            `json:"opsPerSecond"`
	ErrorMargin    Number            `json:"errorMargin"`
	Significance   float64           `json:"significance"`
	Retained       int               `json:"retained"`
	Outliers       int               `json:"outliers"`
	SevereOutliers int               `json:"severeOutliers"`
	Fit            Fit               `json:"fit"`
	Calibration    bench.Calibration `json:"calibration"`
	Line           string            `json:"line"`
}

// Report is the JSON document written by --json.
type Report struct {
	Config      bench.Config `json:"config"`
	Results     []Entry      `json:"results"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Build packs results with the runner configuration and a timestamp.
func Build(cfg bench.Config, results []bench.Result, now time.Time) Report {
	entries := make([]Entry, len(results))
	for i, r := range results {
		entries[i] = Entry{
			Name:           r.Name,
			OpsPerSecond:   Number(r.OpsPerSecond),
			ErrorMargin:    Number(r.ErrorMargin),
			Significance:   r.Significance,
			Retained:       r.Retained,
			Outliers:       r.Outliers,
			SevereOutliers: r.SevereOutliers,
			Fit: Fit{
				Intercept:        Number(r.Fit.Intercept),
				Slope:            Number(r.Fit.Slope),
				StandardError:    Number(r.Fit.StandardError),
				ConfidenceRadius: Number(r.Fit.ConfidenceRadius),
				N:                r.Fit.N,
			},
			Calibration: r.Calibration,
			Line:        Line(r),
		}
	}
	return Report{Config: cfg, Results: entries, GeneratedAt: now.UTC()}
}

// WriteJSON writes rep as indented JSON followed by a newline.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	return nil
}

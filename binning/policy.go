// Package binning implements the adaptive equal-frequency histogram
// partitioning and the spec-string policy parsing that every index variant
// uses to turn a raw value column into a set of bin boundaries (spec §4.C).
// The core algorithm, DivideCounts, is a faithful port of
// ibis::index::divideCounts from the original C++ source; the policy parser
// and the scalar->bin mapping are grounded on the spec's own description
// since the teacher corpus has no binning analogue of its own.
package binning

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which binning policy a spec string requested.
type Kind int

const (
	// KindDefault lets the variant factory choose per spec §4.C's default
	// heuristic.
	KindDefault Kind = iota
	// KindNone means one bin per distinct value (nbins=0).
	KindNone
	// KindAdaptive means N equal-frequency bins chosen by DivideCounts.
	KindAdaptive
	// KindPrecision means bucket by rounding to P significant digits.
	KindPrecision
	// KindUniform means uniform bin widths over [Start, End].
	KindUniform
	// KindExplicit means the caller supplied the boundary list directly.
	KindExplicit
)

// Policy is the parsed form of an indexing spec string (spec §4.C table).
type Policy struct {
	Kind      Kind
	NBins     int
	Precision int
	Start     float64
	End       float64
	Explicit  []float64
	Encoding  string // "equality", "range", "interval", ... empty if unspecified
	NComp     int    // multicomponent component count, 0 if not requested
	IndexNone bool   // "index=none": skip index construction entirely
}

// ParsePolicy parses an indexing spec string. An empty string or the literal
// "default"/"automatic" yields a KindDefault policy.
//
// Recognized forms (whitespace-insensitive, case-insensitive keys):
//
//	<binning none/>
//	nbins=N
//	<binning nbins=N/>
//	precision=P
//	<binning precision=P/>
//	start=S end=E nbins=N
//	<binning start=S end=E nbins=N/>
//	<binning v1,v2,v3,.../>        (explicit boundary list)
//	<encoding NAME/>
//	ncomp=K
//	index=none
func ParsePolicy(spec string) (Policy, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" || strings.EqualFold(trimmed, "default") || strings.EqualFold(trimmed, "automatic") {
		return Policy{Kind: KindDefault}, nil
	}

	p := Policy{Kind: KindDefault}
	fields := tokenize(trimmed)

	sawBinningField := false
	var explicitTokens []string

	for _, f := range fields {
		key, val, hasVal := strings.Cut(f, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		switch {
		case !hasVal && strings.EqualFold(key, "none"):
			p.Kind = KindNone
			sawBinningField = true
		case key == "nbins":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Policy{}, fmt.Errorf("binning: invalid nbins %q: %w", val, err)
			}
			p.NBins = n
			if n == 0 {
				p.Kind = KindNone
			} else if p.Kind == KindDefault {
				p.Kind = KindAdaptive
			}
			sawBinningField = true
		case key == "precision":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Policy{}, fmt.Errorf("binning: invalid precision %q: %w", val, err)
			}
			p.Precision = n
			p.Kind = KindPrecision
			sawBinningField = true
		case key == "start":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Policy{}, fmt.Errorf("binning: invalid start %q: %w", val, err)
			}
			p.Start = v
			p.Kind = KindUniform
			sawBinningField = true
		case key == "end":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Policy{}, fmt.Errorf("binning: invalid end %q: %w", val, err)
			}
			p.End = v
			p.Kind = KindUniform
			sawBinningField = true
		case key == "encoding":
			p.Encoding = strings.ToLower(val)
		case key == "ncomp":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Policy{}, fmt.Errorf("binning: invalid ncomp %q: %w", val, err)
			}
			p.NComp = n
		case key == "index" && strings.EqualFold(val, "none"):
			p.IndexNone = true
		default:
			// Not a recognized key=value pair: treat as a candidate
			// explicit boundary token (a bare number).
			if _, err := strconv.ParseFloat(f, 64); err == nil {
				explicitTokens = append(explicitTokens, f)
			}
		}
	}

	if len(explicitTokens) > 0 && !sawBinningField {
		bounds := make([]float64, 0, len(explicitTokens))
		for _, t := range explicitTokens {
			v, _ := strconv.ParseFloat(t, 64) // validated above
			bounds = append(bounds, v)
		}
		p.Kind = KindExplicit
		p.Explicit = bounds
	}

	return p, nil
}

// tokenize strips the optional "<binning ... />"/"<encoding ... />" angle
// brackets and splits the remainder on whitespace and commas. The name
// inside "<encoding NAME/>" is returned as a single "encoding=NAME" token.
func tokenize(spec string) []string {
	s := spec
	s = strings.ReplaceAll(s, "<binning", " ")
	s = strings.ReplaceAll(s, "<encoding", " encoding=")
	s = strings.ReplaceAll(s, "/>", " ")
	s = strings.ReplaceAll(s, "<", " ")
	s = strings.ReplaceAll(s, ">", " ")
	s = strings.ReplaceAll(s, ",", " ")

	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		if fields[i] == "encoding=" && i+1 < len(fields) {
			out = append(out, "encoding="+fields[i+1])
			i++

			continue
		}
		out = append(out, fields[i])
	}

	return out
}

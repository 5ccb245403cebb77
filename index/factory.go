package index

import (
	"fmt"
	"math"
	"strings"

	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

const defaultResolution = 1000

var variantByName = map[string]format.VariantTag{
	"bin":      format.VariantBin,
	"range":    format.VariantRange,
	"mesa":     format.VariantMesa,
	"ambit":    format.VariantAmbit,
	"pale":     format.VariantPale,
	"pack":     format.VariantPack,
	"zone":     format.VariantZone,
	"fuge":     format.VariantFuge,
	"egale":    format.VariantEgale,
	"moins":    format.VariantMoins,
	"entre":    format.VariantEntre,
	"fade":     format.VariantFade,
	"sapid":    format.VariantSapid,
	"sbiad":    format.VariantSbiad,
	"bak":      format.VariantBak,
	"bak2":     format.VariantBak2,
	"relic":    format.VariantRelic,
	"slice":    format.VariantSlice,
	"direkte":  format.VariantDirekte,
	"keywords": format.VariantKeywords,
}

// parseIndexOverride looks for an explicit "index=NAME" token in spec
// (spec §8 "Direct tiny": `<binning none/> index=direkte`), distinct from
// "index=none" which binning.ParsePolicy already recognizes as IndexNone.
func parseIndexOverride(spec string) (format.VariantTag, bool) {
	replacer := strings.NewReplacer("<binning", " ", "<encoding", " ", "/>", " ", "<", " ", ">", " ", ",", " ")
	for _, tok := range strings.Fields(replacer.Replace(strings.ToLower(spec))) {
		name, val, ok := strings.Cut(tok, "=")
		if !ok || name != "index" || val == "none" {
			continue
		}
		if tag, known := variantByName[val]; known {
			return tag, true
		}
	}

	return format.VariantUnknown, false
}

// Build constructs the Variant a spec string (already resolved through
// config.Store.ResolveIndexSpec) requests for a numeric column's values.
// Text columns go through BuildKeywords instead, since they don't carry a
// []float64 payload. Returns (nil, nil) for "index=none".
func Build(values []float64, colType format.ColumnType, spec string) (Variant, error) {
	if colType == format.ColumnText {
		return nil, fmt.Errorf("index: text columns must use BuildKeywords, not Build")
	}

	policy, err := binning.ParsePolicy(spec)
	if err != nil {
		return nil, fmt.Errorf("index: parse spec: %w", err)
	}
	if policy.IndexNone {
		return nil, nil
	}

	if tag, ok := parseIndexOverride(spec); ok {
		return buildByTag(tag, values, policy)
	}

	if policy.Kind == binning.KindDefault {
		return buildDefault(values, colType), nil
	}

	return buildByPolicy(values, policy)
}

// buildByPolicy constructs a variant from an explicit (non-default) policy.
func buildByPolicy(values []float64, policy binning.Policy) (Variant, error) {
	switch policy.Kind {
	case binning.KindNone:
		if policy.NComp > 0 {
			return buildMulticomponent(values, 0, policy.NComp, policy.Encoding, true), nil
		}

		return NewRelic(values), nil

	case binning.KindPrecision:
		tag := format.VariantBak
		if policy.Encoding == "bak2" {
			tag = format.VariantBak2
		}

		return NewReduced(values, policy.Precision, tag), nil

	case binning.KindUniform:
		bounds := uniformBounds(policy.Start, policy.End, policy.NBins)

		return buildEncoded(values, bounds, policy.Encoding), nil

	case binning.KindExplicit:
		bounds := append([]float64(nil), policy.Explicit...)
		if len(bounds) > 0 {
			bounds[len(bounds)-1] = posInf
		}

		return buildEncoded(values, bounds, policy.Encoding), nil

	case binning.KindAdaptive:
		nbins := policy.NBins
		if nbins < 1 {
			nbins = defaultResolution
		}
		if policy.NComp > 0 {
			return buildMulticomponent(values, nbins, policy.NComp, policy.Encoding, false), nil
		}
		if policy.Encoding != "" && encodingIsTwoLevel(policy.Encoding) {
			return buildTwoLevel(values, nbins, policy.Encoding), nil
		}

		return buildFlat(values, nbins, policy.Encoding), nil

	default:
		return NewEquality(values, defaultResolution, defaultResolution), nil
	}
}

func buildByTag(tag format.VariantTag, values []float64, policy binning.Policy) (Variant, error) {
	nbins := policy.NBins
	if nbins < 1 {
		nbins = defaultResolution
	}

	switch tag {
	case format.VariantDirekte:
		return NewDirect(values), nil
	case format.VariantRelic:
		return NewRelic(values), nil
	case format.VariantSlice:
		return NewSlice(values), nil
	case format.VariantBin:
		return NewEquality(values, nbins, nbins), nil
	case format.VariantRange:
		return NewRangeEncoded(values, nbins, nbins), nil
	case format.VariantMesa:
		return NewMesa(values, nbins, nbins), nil
	case format.VariantBak:
		return NewReduced(values, policy.Precision, format.VariantBak), nil
	case format.VariantBak2:
		return NewReduced(values, policy.Precision, format.VariantBak2), nil
	case format.VariantAmbit:
		return NewTwoLevel(values, nbins, twoLevelFine(nbins), nbins, tag, true, fineCumulative), nil
	case format.VariantPale:
		return NewTwoLevel(values, nbins, twoLevelFine(nbins), nbins, tag, true, fineEquality), nil
	case format.VariantPack:
		return NewTwoLevel(values, nbins, twoLevelFine(nbins), nbins, tag, false, fineCumulative), nil
	case format.VariantZone:
		return NewTwoLevel(values, nbins, twoLevelFine(nbins), nbins, tag, false, fineEquality), nil
	case format.VariantFuge:
		return NewTwoLevel(values, nbins, twoLevelFine(nbins), nbins, tag, false, fineInterval), nil
	case format.VariantEgale:
		comp := max(policy.NComp, 2)
		return NewMulticomponent(values, nbins, comp, nbins, tag, componentEquality, false), nil
	case format.VariantMoins:
		comp := max(policy.NComp, 2)
		return NewMulticomponent(values, nbins, comp, nbins, tag, componentCumulative, false), nil
	case format.VariantEntre:
		comp := max(policy.NComp, 2)
		return NewMulticomponent(values, nbins, comp, nbins, tag, componentInterval, false), nil
	case format.VariantFade:
		comp := max(policy.NComp, 2)
		return NewMulticomponent(values, 0, comp, nbins, tag, componentEquality, true), nil
	case format.VariantSapid:
		comp := max(policy.NComp, 2)
		return NewMulticomponent(values, 0, comp, nbins, tag, componentCumulative, true), nil
	case format.VariantSbiad:
		comp := max(policy.NComp, 2)
		return NewMulticomponent(values, 0, comp, nbins, tag, componentInterval, true), nil
	default:
		return nil, fmt.Errorf("index: unsupported variant override %q", tag)
	}
}

func encodingIsTwoLevel(encoding string) bool {
	switch encoding {
	case "ambit", "pale", "pack", "zone", "fuge":
		return true
	default:
		return false
	}
}

func buildTwoLevel(values []float64, nbins int, encoding string) Variant {
	nFine := twoLevelFine(nbins)
	switch encoding {
	case "ambit":
		return NewTwoLevel(values, nbins, nFine, nbins, format.VariantAmbit, true, fineCumulative)
	case "pale":
		return NewTwoLevel(values, nbins, nFine, nbins, format.VariantPale, true, fineEquality)
	case "pack":
		return NewTwoLevel(values, nbins, nFine, nbins, format.VariantPack, false, fineCumulative)
	case "fuge":
		return NewTwoLevel(values, nbins, nFine, nbins, format.VariantFuge, false, fineInterval)
	default: // "zone"
		return NewTwoLevel(values, nbins, nFine, nbins, format.VariantZone, false, fineEquality)
	}
}

func twoLevelFine(nbins int) int {
	n := int(math.Sqrt(float64(nbins)))
	if n < 1 {
		n = 1
	}

	return n
}

func buildMulticomponent(values []float64, nbins, ncomp int, encoding string, unbinned bool) Variant {
	comp := ncomp
	if comp < 2 {
		comp = 2
	}
	switch {
	case unbinned && encoding == "range":
		return NewMulticomponent(values, 0, comp, defaultResolution, format.VariantSapid, componentCumulative, true)
	case unbinned && encoding == "interval":
		return NewMulticomponent(values, 0, comp, defaultResolution, format.VariantSbiad, componentInterval, true)
	case unbinned:
		return NewMulticomponent(values, 0, comp, defaultResolution, format.VariantFade, componentEquality, true)
	case encoding == "range":
		return NewMulticomponent(values, nbins, comp, nbins, format.VariantMoins, componentCumulative, false)
	case encoding == "interval":
		return NewMulticomponent(values, nbins, comp, nbins, format.VariantEntre, componentInterval, false)
	default:
		return NewMulticomponent(values, nbins, comp, nbins, format.VariantEgale, componentEquality, false)
	}
}

func buildFlat(values []float64, nbins int, encoding string) Variant {
	switch encoding {
	case "range", "cumulative":
		return NewRangeEncoded(values, nbins, nbins)
	case "interval":
		return NewMesa(values, nbins, nbins)
	default:
		return NewEquality(values, nbins, nbins)
	}
}

func buildEncoded(values []float64, bounds []float64, encoding string) Variant {
	switch encoding {
	case "range", "cumulative":
		r := &RangeEncoded{Base: Base{
			Tag: format.VariantRange, NRows: uint64(len(values)), //nolint:gosec
			Bound: bounds, Engine: endian.GetLittleEndianEngine(),
		}}
		r.build(values)

		return r
	default:
		e := &Equality{Base: Base{
			Tag: format.VariantBin, NRows: uint64(len(values)), //nolint:gosec
			Bound: bounds, Engine: endian.GetLittleEndianEngine(),
		}}
		e.values = append([]float64(nil), values...)
		e.build(values)

		return e
	}
}

func uniformBounds(start, end float64, nbins int) []float64 {
	if nbins < 1 {
		nbins = 1
	}
	bounds := make([]float64, nbins)
	width := (end - start) / float64(nbins)
	for i := 0; i < nbins; i++ {
		bounds[i] = start + width*float64(i+1)
	}
	bounds[nbins-1] = posInf

	return bounds
}

// BuildKeywords constructs a term-document index for a text column, per
// spec §4.C's "Text column → keywords term-document matrix" default.
// nbuckets follows the same resolution the rest of the default heuristic
// uses for equality-binned columns when the caller doesn't override it.
func BuildKeywords(docs []string, nbuckets int) *Keywords {
	if nbuckets < 1 {
		nbuckets = defaultResolution
	}

	return NewKeywords(docs, nbuckets)
}

// buildDefault implements spec §4.C's default variant selection for an
// empty or "default"/"automatic" spec string.
func buildDefault(values []float64, colType format.ColumnType) Variant {
	if colType.IsSmallInteger() {
		return NewRelic(values)
	}
	if colType.IsFloat() {
		return NewEquality(values, defaultResolution, defaultResolution)
	}

	lo, hi := minMax(values)
	nrows := float64(len(values))
	spread := hi - lo

	if colType.IsInteger() && (spread < 1000 || spread < 0.1*nrows) {
		switch {
		case lo >= 0 && lo <= math.Ceil(hi/100):
			return NewDirect(values)
		case hi >= lo+100:
			// "interval-equality two-level": equality coarse buckets over an
			// interval-binned (mesa) fine level, i.e. fuge.
			nbins := int(spread) + 1
			nFine := twoLevelFine(nbins)

			return NewTwoLevel(values, nbins, nFine, nbins, format.VariantFuge, false, fineInterval)
		default:
			return NewRelic(values)
		}
	}

	return NewEquality(values, defaultResolution, defaultResolution)
}


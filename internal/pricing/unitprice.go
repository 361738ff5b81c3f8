// Package pricing normalises package sizes and unit prices so products
// from different stores can be compared on equal footing.
//
// Metric units only — Australian market.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// BaseUnit is a canonical base measurement unit.
type BaseUnit string

const (
	UnitGram       BaseUnit = "g"
	UnitMillilitre BaseUnit = "ml"
	// UnitEach marks products priced per piece rather than by measure.
	UnitEach BaseUnit = "each"
)

// PackageSize is a package quantity normalised to a base unit.
type PackageSize struct {
	Qty  float64
	Unit BaseUnit
}

var (
	multiPackRe = regexp.MustCompile(`(?i)(\d+)\s*x\s*(\d+(?:\.\d+)?)\s*(kg|ml|g|l)\b`)
	singleRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|ml|g|l)\b`)
)

func toBase(qty float64, unit string) (PackageSize, bool) {
	switch strings.ToLower(unit) {
	case "kg":
		return PackageSize{Qty: qty * 1000, Unit: UnitGram}, true
	case "l":
		return PackageSize{Qty: qty * 1000, Unit: UnitMillilitre}, true
	case "g":
		return PackageSize{Qty: qty, Unit: UnitGram}, true
	case "ml":
		return PackageSize{Qty: qty, Unit: UnitMillilitre}, true
	}
	return PackageSize{}, false
}

// ParsePackageSize parses a human package-size string ("500g", "2 x 250ml",
// "1.5L") into a base-unit quantity. It recognises multi-packs first, then
// plain sizes. Unrecognised text ("each", "assorted", "pack of 4") returns
// false — the caller must treat that as "no unit pricing", not an error.
func ParsePackageSize(s string) (PackageSize, bool) {
	if m := multiPackRe.FindStringSubmatch(s); m != nil {
		count, err1 := strconv.ParseFloat(m[1], 64)
		perUnit, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return toBase(count*perUnit, m[3])
		}
	}
	if m := singleRe.FindStringSubmatch(s); m != nil {
		qty, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return toBase(qty, m[2])
		}
	}
	return PackageSize{}, false
}

// ComputeDisplayUnitPrice derives a shelf-style unit price. Packages of a
// kilogram or litre and up are shown per kg / per L; smaller ones per 100g
// / per 100ml. "each" products pass through unchanged. Rounded to cents.
func ComputeDisplayUnitPrice(price, qtyInBaseUnit float64, unit BaseUnit) (float64, string, bool) {
	if !isFinite(price) || !isFinite(qtyInBaseUnit) {
		return 0, "", false
	}
	if unit == UnitEach {
		return price, "each", true
	}
	if qtyInBaseUnit <= 0 {
		return 0, "", false
	}
	switch unit {
	case UnitGram:
		if qtyInBaseUnit >= 1000 {
			return round2(price / qtyInBaseUnit * 1000), "kg", true
		}
		return round2(price / qtyInBaseUnit * 100), "100g", true
	case UnitMillilitre:
		if qtyInBaseUnit >= 1000 {
			return round2(price / qtyInBaseUnit * 1000), "L", true
		}
		return round2(price / qtyInBaseUnit * 100), "100ml", true
	}
	return 0, "", false
}

// ComputeNormalisedUnitPrice returns the price per 100 base units at
// 3-decimal precision. This is the sole figure used for cross-store value
// comparison; it is computed from the raw price and quantity so display
// rounding never feeds into it. "each" products have no normalised price.
func ComputeNormalisedUnitPrice(price, qtyInBaseUnit float64, unit BaseUnit) (float64, bool) {
	if !isFinite(price) || !isFinite(qtyInBaseUnit) {
		return 0, false
	}
	if unit == UnitEach || qtyInBaseUnit <= 0 {
		return 0, false
	}
	return round3(price / qtyInBaseUnit * 100), true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

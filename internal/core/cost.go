// Package core provides the tractor log domain types.
//
// This file contains the acres to cost derivation and acres parsing.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RatePerAcre is the flat price charged for one ploughed acre.
const RatePerAcre = 100

var rate = decimal.NewFromInt(RatePerAcre)

// CostForAcres returns floor(acres * RatePerAcre).
//
// The product is computed on the shortest decimal representation of acres,
// so 0.29 acres costs 29 and not 28 as a float multiplication would give.
// Non-positive or non-finite acres cost nothing.
func CostForAcres(acres float64) int64 {
	if !(acres > 0) || math.IsInf(acres, 0) {
		return 0
	}
	return decimal.NewFromFloat(acres).Mul(rate).Floor().IntPart()
}

// CostMatchesAcres reports whether cost is a valid derivation for acres.
// Besides the exact floor it accepts the float64 truncation of acres*100,
// which is what records written by the earlier tool carry (0.29 acres -> 28).
func CostMatchesAcres(acres float64, cost int64) bool {
	if cost == CostForAcres(acres) {
		return true
	}
	return acres > 0 && !math.IsInf(acres, 0) && cost == int64(acres*RatePerAcre)
}

// ParseAcres reads a positive acreage from form input. Both dot and comma
// decimal separators are accepted.
//
// Examples:
//
//	ParseAcres("2.5") -> 2.5, nil
//	ParseAcres("2,5") -> 2.5, nil
//	ParseAcres("0")   -> 0, ErrInvalidAcres
func ParseAcres(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAcres
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, ErrInvalidAcres
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, ErrInvalidAcres
	}
	return f, nil
}

package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"uglgen/internal"
)

const (
	numberToken = `(\d+(?:[.,]\d+)?)`
	unitToken   = `(stück|stck|stk|st\.|st|meter|mtr|m)`
	unitEnd     = `(?:[^\p{L}]|$)`
)

var (
	withUnitPattern = regexp.MustCompile(numberToken + `\s*` + unitToken + unitEnd)
	numberPattern   = regexp.MustCompile(numberToken)
)

type ParsedQty struct {
	Spec    internal.QuantitySpec
	Raw     string
	HasUnit bool
}

// ParseQty never fails: unreadable or missing numbers fall back to 1.
func ParseQty(fragment string, policy internal.UnitPolicy) internal.QuantitySpec {
	return ParseQtyDetailed(fragment, policy).Spec
}

func ParseQtyDetailed(fragment string, policy internal.UnitPolicy) ParsedQty {
	line := Fold(strings.ReplaceAll(fragment, "\u00A0", " "))

	token, unitRaw := "", ""
	if m := withUnitPattern.FindStringSubmatch(line); len(m) > 2 {
		token, unitRaw = m[1], m[2]
	} else if m := numberPattern.FindStringSubmatch(line); len(m) > 1 {
		token = m[1]
	}

	value := 1
	if token != "" {
		value = truncateQty(token)
	}

	out := ParsedQty{Raw: strings.TrimSpace(token + " " + unitRaw)}
	if unit, ok := unitFromToken(unitRaw); ok {
		out.Spec = internal.QuantitySpec{Value: value, Unit: unit}
		out.HasUnit = true
		return out
	}
	out.Spec = internal.QuantitySpec{Value: value, Unit: DefaultUnit(policy, value)}
	return out
}

// DefaultUnit applies when the fragment carries no unit token.
func DefaultUnit(policy internal.UnitPolicy, value int) internal.Unit {
	switch policy {
	case internal.PolicyMeter:
		return internal.UnitMeter
	case internal.PolicyLegacy:
		if value <= 1 {
			return internal.UnitMeter
		}
		return internal.UnitPiece
	default:
		return internal.UnitPiece
	}
}

func unitFromToken(token string) (internal.Unit, bool) {
	switch token {
	case "stück", "stck", "stk", "st.", "st":
		return internal.UnitPiece, true
	case "meter", "mtr", "m":
		return internal.UnitMeter, true
	default:
		return "", false
	}
}

// truncateQty drops the fractional part; anything below one becomes one.
func truncateQty(token string) int {
	d, err := decimal.NewFromString(strings.ReplaceAll(token, ",", "."))
	if err != nil {
		return 1
	}
	d = d.Truncate(0)
	if d.GreaterThan(decimal.NewFromInt(maxQty)) {
		return maxQty
	}
	n := d.IntPart()
	if n < 1 {
		return 1
	}
	return int(n)
}

// 11 digits in a position record.
const maxQty = 99_999_999_999

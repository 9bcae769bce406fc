package lang

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Type is the numeric representation of a [Number] or a declared argument.
type Type int

const (
	// TypeFloat is a 64-bit IEEE 754 floating-point value.
	TypeFloat Type = iota
	// TypeInteger is a 64-bit signed integer value.
	TypeInteger
)

// String returns the canonical keyword for the type.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	default:
		return "double"
	}
}

// ParseType parses a type keyword. The keywords "double", "float" and
// "real" select [TypeFloat]; "integer" and "int" select [TypeInteger].
// Keywords are case-insensitive.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "double", "float", "real":
		return TypeFloat, nil
	case "integer", "int":
		return TypeInteger, nil
	default:
		return TypeFloat, ErrUnknownType.Wrapf("%q", s)
	}
}

// Number is a numeric value held simultaneously as an int64 and a float64.
//
// Its [Type] selects which representation is authoritative for promotion.
// Both representations are always populated, so either may be read at any
// time. The zero value is the Float 0.0.
type Number struct {
	i   int64
	f   float64
	typ Type
}

// Int returns an Integer Number.
func Int(v int64) Number {
	return Number{i: v, f: float64(v), typ: TypeInteger}
}

// Float returns a Float Number.
func Float(v float64) Number {
	return Number{i: truncate(v), f: v, typ: TypeFloat}
}

// Type returns the authoritative representation of n.
func (n Number) Type() Type { return n.typ }

// IsInteger reports whether n is an Integer.
func (n Number) IsInteger() bool { return n.typ == TypeInteger }

// Int returns n as an int64. Float values are truncated toward zero,
// saturating at the int64 limits; NaN yields 0.
func (n Number) Int() int64 { return n.i }

// Float returns n as a float64.
func (n Number) Float() float64 { return n.f }

// As returns n converted to the given type.
func (n Number) As(typ Type) Number {
	if typ == TypeInteger {
		return Int(n.i)
	}

	return Float(n.f)
}

// Negate negates n in place, preserving its type.
func (n *Number) Negate() {
	if n.typ == TypeInteger {
		*n = Int(-n.i)
	} else {
		*n = Float(-n.f)
	}
}

// Abs replaces n with its absolute value in place, preserving its type.
func (n *Number) Abs() {
	if n.typ == TypeInteger {
		if n.i < 0 {
			*n = Int(-n.i)
		}
	} else {
		*n = Float(math.Abs(n.f))
	}
}

// String formats n. Float values always include a decimal point or an
// exponent so that they are distinguishable from Integer values.
func (n Number) String() string {
	if n.typ == TypeInteger {
		return strconv.FormatInt(n.i, 10)
	}

	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}

	return s + ".0"
}

// MarshalJSON encodes n as a JSON number. Non-finite floats, which JSON
// cannot represent, are encoded as strings.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.typ == TypeFloat && (math.IsInf(n.f, 0) || math.IsNaN(n.f)) {
		return json.Marshal(n.String())
	}

	return []byte(n.String()), nil
}

// MarshalYAML encodes n as a YAML scalar.
func (n Number) MarshalYAML() (any, error) {
	if n.typ == TypeInteger {
		return n.i, nil
	}

	return n.f, nil
}

// ParseNumber parses s as an Integer if it is a base-10 integer literal,
// otherwise as a Float.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)

	if n, rest, ok := scanNumber(s, TypeInteger); ok && rest == "" {
		return n, nil
	}

	n, rest, ok := scanNumber(s, TypeFloat)
	if !ok {
		return Number{}, ErrInvalidLiteral.Wrapf("%q is not a number", s)
	}

	if rest != "" {
		return Number{}, ErrExtraneousData.Wrapf("%q after %q", rest, s[:len(s)-len(rest)])
	}

	return n, nil
}

// scanNumber parses the longest numeric prefix of s of the given type and
// returns the unparsed remainder with surrounding whitespace trimmed.
//
// Integer literals are an optional sign followed by decimal digits. Float
// literals additionally allow a fraction and an exponent, and at least one
// digit must appear before or after the decimal point.
func scanNumber(s string, typ Type) (Number, string, bool) {
	s = strings.TrimSpace(s)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := digits(s[i:])
	i += intDigits

	if typ == TypeInteger {
		if intDigits == 0 {
			return Number{}, s, false
		}

		v, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return Number{}, s, false
		}

		return Int(v), strings.TrimSpace(s[i:]), true
	}

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = digits(s[i+1:])
		if intDigits+fracDigits > 0 {
			i += 1 + fracDigits
		}
	}

	if intDigits+fracDigits == 0 {
		return Number{}, s, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}

		if n := digits(s[j:]); n > 0 {
			i = j + n
		}
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil && !isRangeError(err) {
		return Number{}, s, false
	}

	return Float(v), strings.TrimSpace(s[i:]), true
}

func digits(s string) int {
	n := 0
	for n < len(s) && '0' <= s[n] && s[n] <= '9' {
		n++
	}

	return n
}

func isRangeError(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}

// truncate converts f to int64 rounding toward zero, saturating at the
// int64 limits. NaN converts to 0.
func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

package utils

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// DecimalScale is the number of decimal digits carried by every monetary value.
const DecimalScale = 8

// decimalUnit is 10^DecimalScale.
const decimalUnit = int64(100_000_000)

var (
	// ErrDivisionByZero is returned when dividing by a zero decimal
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidDecimalLiteral is returned for malformed decimal strings
	ErrInvalidDecimalLiteral = errors.New("invalid decimal literal")
)

// Decimal is a fixed-point monetary value stored as value * 10^DecimalScale.
// It is never constructed from a binary float, so arithmetic is reproducible
// bit-for-bit. The underlying integer maps to a BIGINT column.
type Decimal int64

// ParseDecimal parses a decimal-string literal like "100.07" or "-0.0333".
// At most DecimalScale fractional digits are accepted.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidDecimalLiteral
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, ErrInvalidDecimalLiteral
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return 0, ErrInvalidDecimalLiteral
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > DecimalScale {
		return 0, ErrInvalidDecimalLiteral
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidDecimalLiteral
		}
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidDecimalLiteral
	}

	frac := int64(0)
	if fracPart != "" {
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, ErrInvalidDecimalLiteral
		}
		for i := len(fracPart); i < DecimalScale; i++ {
			frac *= 10
		}
	}

	units := whole*decimalUnit + frac
	if whole > (1<<62)/decimalUnit {
		return 0, ErrInvalidDecimalLiteral
	}
	if neg {
		units = -units
	}
	return Decimal(units), nil
}

// MustDecimal parses a decimal literal and panics on failure.
// Intended for constants and test fixtures only.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(fmt.Sprintf("utils: bad decimal literal %q: %v", s, err))
	}
	return d
}

// DecimalFromUnits builds a Decimal from raw scaled units.
func DecimalFromUnits(units int64) Decimal {
	return Decimal(units)
}

// Units returns the raw scaled integer representation.
func (d Decimal) Units() int64 {
	return int64(d)
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return d + other
}

// Sub returns d - other.
func (d Decimal) Sub(other Decimal) Decimal {
	return d - other
}

// Mul returns d * other. The 128-bit intermediate product is divided back by
// the scale with round-half-up, matching the ledger's rounding policy.
func (d Decimal) Mul(other Decimal) Decimal {
	product := new(big.Int).Mul(big.NewInt(int64(d)), big.NewInt(int64(other)))
	return Decimal(divRoundHalfUp(product, decimalUnit))
}

// Div returns d / other, rounded half-up at the last carried digit.
func (d Decimal) Div(other Decimal) (Decimal, error) {
	if other == 0 {
		return 0, ErrDivisionByZero
	}
	numerator := new(big.Int).Mul(big.NewInt(int64(d)), big.NewInt(decimalUnit))
	return Decimal(divRoundHalfUp(numerator, int64(other))), nil
}

// Round rounds half-up to the given number of decimal digits. The result
// stays in the scaled representation.
func (d Decimal) Round(precision int) Decimal {
	if precision < 0 {
		precision = 0
	}
	if precision >= DecimalScale {
		return d
	}
	step := int64(1)
	for i := precision; i < DecimalScale; i++ {
		step *= 10
	}
	return Decimal(divRoundHalfUp(big.NewInt(int64(d)), step) * step)
}

// Cmp returns -1, 0 or 1.
func (d Decimal) Cmp(other Decimal) int {
	switch {
	case d < other:
		return -1
	case d > other:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the value is exactly zero.
func (d Decimal) IsZero() bool {
	return d == 0
}

// IsNegative reports whether the value is below zero.
func (d Decimal) IsNegative() bool {
	return d < 0
}

// String renders the value with the full carried precision, e.g. "5.00000000".
func (d Decimal) String() string {
	return d.Format(DecimalScale)
}

// Format renders the value rounded half-up to the given precision.
func (d Decimal) Format(precision int) string {
	if precision < 0 {
		precision = 0
	}
	if precision > DecimalScale {
		precision = DecimalScale
	}
	v := int64(d.Round(precision))
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / decimalUnit
	frac := v % decimalUnit
	if precision == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	step := int64(1)
	for i := precision; i < DecimalScale; i++ {
		step *= 10
	}
	return fmt.Sprintf("%s%d.%0*d", sign, whole, precision, frac/step)
}

// MarshalJSON renders the value as a decimal string so API clients never see
// a binary float.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare numeric
// literal in decimal notation.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; the scaled integer is stored directly.
func (d Decimal) Value() (driver.Value, error) {
	return int64(d), nil
}

// Scan implements sql.Scanner.
func (d *Decimal) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = 0
		return nil
	case int64:
		*d = Decimal(v)
		return nil
	case []byte:
		units, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return ErrInvalidDecimalLiteral
		}
		*d = Decimal(units)
		return nil
	default:
		return fmt.Errorf("utils: cannot scan %T into Decimal", src)
	}
}

// divRoundHalfUp divides numerator by divisor rounding half away from zero.
func divRoundHalfUp(numerator *big.Int, divisor int64) int64 {
	denom := big.NewInt(divisor)
	quotient := new(big.Int)
	remainder := new(big.Int)
	quotient.QuoRem(numerator, denom, remainder)

	result := quotient.Int64()
	doubled := new(big.Int).Abs(remainder)
	doubled.Lsh(doubled, 1)
	if doubled.CmpAbs(denom) >= 0 {
		if (numerator.Sign() < 0) != (divisor < 0) {
			result--
		} else {
			result++
		}
	}
	return result
}

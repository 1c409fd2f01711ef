package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/shopspring/decimal"
)

const (
	priceMaxDigits     = 5
	priceDecimalPlaces = 2
)

var (
	ErrInvalidPrice = errors.New("price must be a decimal with at most 5 digits and 2 decimal places")

	// smallest amount that needs more whole digits than NUMERIC(5,2) allows
	priceWholeLimit = decimal.New(1, priceMaxDigits-priceDecimalPlaces)
)

// Price is an amount that fits NUMERIC(5,2).
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) (Price, error) {
	if d.Exponent() < -priceDecimalPlaces || d.Abs().GreaterThanOrEqual(priceWholeLimit) {
		return Price{}, ErrInvalidPrice
	}
	return Price{Decimal: d}, nil
}

// MustParsePrice is ParsePrice for literals known to be valid.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePrice accepts "12", "12.5", "12.50" and ".75". Exponents, more than two
// decimal places and more than three whole digits are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.ContainsAny(s, "eE") {
		return Price{}, ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, ErrInvalidPrice
	}
	return NewPrice(d)
}

func (p Price) String() string {
	return p.StringFixed(priceDecimalPlaces)
}

func (p Price) Equal(other Price) bool {
	return p.Decimal.Equal(other.Decimal)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON takes either a JSON string or a bare number. Bad input is
// reported as a field error so the bind layer can surface it per field.
func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}

	v, err := ParsePrice(raw)
	if err != nil || v.IsNegative() {
		return validation.New("price", "decimal", ErrInvalidPrice.Error())
	}

	*p = v
	return nil
}

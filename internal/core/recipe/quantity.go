package recipe

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// ToTasteLabel is how a non-quantified amount is rendered.
const ToTasteLabel = "q.b."

// leading numeric prefix, e.g. "200", "1,5 kg", ".5", "2e3"
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// Quantity is either a numeric amount or "to taste". The zero value is a
// numeric zero.
type Quantity struct {
	amount  float64
	toTaste bool
	raw     string
}

// Numeric returns a numeric quantity.
func Numeric(amount float64) Quantity {
	return Quantity{amount: amount}
}

// ToTaste returns a non-quantified amount. raw keeps the original text
// ("q.b.", "a pinch") for round trips.
func ToTaste(raw string) Quantity {
	return Quantity{toTaste: true, raw: strings.TrimSpace(raw)}
}

// LeadingNumber parses the leading number of s, accepting a comma as decimal
// separator. ok is false when s does not start with a number.
func LeadingNumber(s string) (value float64, ok bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseQuantity reads a raw ingredient amount. Anything without a leading
// number is to taste; a zero amount only counts as numeric when written as
// exactly "0".
func ParseQuantity(raw string) Quantity {
	trimmed := strings.TrimSpace(raw)
	v, ok := LeadingNumber(trimmed)
	if !ok || (v == 0 && trimmed != "0") {
		return ToTaste(trimmed)
	}
	return Numeric(v)
}

// IsToTaste reports whether q is non-quantified.
func (q Quantity) IsToTaste() bool {
	return q.toTaste
}

// Amount is the numeric amount, zero when to taste.
func (q Quantity) Amount() float64 {
	if q.toTaste {
		return 0
	}
	return q.amount
}

// Scale multiplies a numeric quantity; to-taste quantities are unchanged.
func (q Quantity) Scale(ratio float64) Quantity {
	if q.toTaste {
		return q
	}
	return Numeric(q.amount * ratio)
}

func (q Quantity) String() string {
	if q.toTaste {
		if q.raw != "" {
			return q.raw
		}
		return ToTasteLabel
	}
	return strconv.FormatFloat(q.amount, 'f', -1, 64)
}

// MarshalJSON renders numbers as JSON numbers and to-taste amounts as their
// original text.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.toTaste {
		return json.Marshal(q.String())
	}
	return []byte(strconv.FormatFloat(q.amount, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string, or any other string
// (to taste).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*q = ToTaste("")
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*q = ParseQuantity(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			// booleans and other oddities are not amounts
			*q = ToTaste(string(trimmed))
			return nil
		}
		*q = Numeric(f)
		return nil
	}
}

package schema

import "strconv"

// Decimal is a float that marshals in plain positional notation, which keeps
// values valid for xsd:decimal as well as xsd:double.
type Decimal float64

// MarshalText implements encoding.TextMarshaler.
func (d Decimal) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(d), 'f', -1, 64), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decimal) UnmarshalText(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*d = Decimal(v)
	return nil
}

// DecimalPtr returns a pointer to v as a Decimal, or nil when v is nil.
func DecimalPtr(v *float64) *Decimal {
	if v == nil {
		return nil
	}
	d := Decimal(*v)
	return &d
}

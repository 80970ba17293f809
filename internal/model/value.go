package model

// Value is a float that may be undefined, e.g. an indicator whose window is
// not yet satisfied. The zero Value is undefined.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a defined Value.
func Some(f float64) Value { return Value{Float: f, Valid: true} }

// None is the undefined Value.
var None = Value{}

// Get returns the float or an InsufficientDataError naming the indicator.
func (v Value) Get(indicator string) (float64, error) {
	if !v.Valid {
		return 0, &InsufficientDataError{Indicator: indicator}
	}
	return v.Float, nil
}

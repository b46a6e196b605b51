package model

import "fmt"

// Value is a typed property value. The concrete types map one-to-one onto
// the measure types of the output schema.
type Value interface {
	propertyValue()
	String() string
}

// Label is a short text value.
type Label string

// Real is a dimensionless real number.
type Real float64

// Length is a length in metres.
type Length float64

// Integer is a count.
type Integer int

// Bool is a true/false flag.
type Bool bool

func (Label) propertyValue()   {}
func (Real) propertyValue()    {}
func (Length) propertyValue()  {}
func (Integer) propertyValue() {}
func (Bool) propertyValue()    {}

func (v Label) String() string   { return string(v) }
func (v Real) String() string    { return fmt.Sprintf("%g", float64(v)) }
func (v Length) String() string  { return fmt.Sprintf("%gm", float64(v)) }
func (v Integer) String() string { return fmt.Sprintf("%d", int(v)) }
func (v Bool) String() string    { return fmt.Sprintf("%t", bool(v)) }

// Property is a single named value.
type Property struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// PropertyRecord is the ordered property set attached to an entity.
type PropertyRecord struct {
	SetName string     `json:"set_name"`
	Items   []Property `json:"items"`
}

// Get returns the value for name.
func (r PropertyRecord) Get(name string) (Value, bool) {
	for _, p := range r.Items {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether the record carries name.
func (r PropertyRecord) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// IsZero reports whether the record is empty.
func (r PropertyRecord) IsZero() bool {
	return r.SetName == "" && len(r.Items) == 0
}

// Map returns the record as a map, for comparisons.
func (r PropertyRecord) Map() map[string]Value {
	m := make(map[string]Value, len(r.Items))
	for _, p := range r.Items {
		m[p.Name] = p.Value
	}
	return m
}

// Package txtype represents the direction of a financial transaction.
package txtype

import "fmt"

// The set of transaction types.
var (
	Income  = newType("INCOME")
	Expense = newType("EXPENSE")
)

var types = make(map[string]Type)

// Type represents a transaction direction.
type Type struct {
	value string
}

func newType(t string) Type {
	tp := Type{t}
	types[t] = tp
	return tp
}

// String returns the name of the type.
func (t Type) String() string {
	return t.value
}

// IsZero reports whether the value was never set.
func (t Type) IsZero() bool {
	return t.value == ""
}

// Equal provides support for the go-cmp package and testing.
func (t Type) Equal(t2 Type) bool {
	return t.value == t2.value
}

// MarshalText provides support for logging and any marshal needs.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// Parse parses the string value and returns a type if one exists.
func Parse(value string) (Type, error) {
	t, exists := types[value]
	if !exists {
		return Type{}, fmt.Errorf("invalid transaction type %q", value)
	}

	return t, nil
}

// MustParse parses the string value and panics when it is unknown.
func MustParse(value string) Type {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return t
}

// Package phone represents an optional contact phone number.
package phone

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// phoneRegEx accepts an optional leading +, then digits with the separators
// people actually type: spaces, hyphens, dots and area code parentheses.
var phoneRegEx = regexp.MustCompile(`^\+?[0-9\s().-]{6,25}$`)

// Null represents a phone number that may be absent. Clients are frequently
// registered with an email only.
type Null struct {
	value string
	valid bool
}

// ParseNull returns an absent number for blank input and validates anything
// else.
func ParseNull(value string) (Null, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Null{}, nil
	}

	if !phoneRegEx.MatchString(value) {
		return Null{}, fmt.Errorf("invalid phone %q", value)
	}

	return Null{value: value, valid: true}, nil
}

// MustParseNull parses the value and panics when it is not a phone number.
func MustParseNull(value string) Null {
	n, err := ParseNull(value)
	if err != nil {
		panic(err)
	}

	return n
}

// FromSQLNullString rebuilds the value from a column without revalidating it.
func FromSQLNullString(ns sql.NullString) Null {
	return Null{value: ns.String, valid: ns.Valid && ns.String != ""}
}

// ToSQLNullString converts a Null value to a sql NullString.
func ToSQLNullString(n Null) sql.NullString {
	return sql.NullString{
		String: n.value,
		Valid:  n.valid,
	}
}

// Valid reports whether a number is present.
func (n Null) Valid() bool {
	return n.valid
}

// String returns the number, or the empty string when absent.
func (n Null) String() string {
	return n.value
}

// Equal provides support for the go-cmp package and testing.
func (n Null) Equal(n2 Null) bool {
	return n.value == n2.value && n.valid == n2.valid
}

// MarshalText provides support for logging and any marshal needs.
func (n Null) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}

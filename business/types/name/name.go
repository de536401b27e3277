// Package name represents a display name in the system.
package name

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Name represents a display name for people and records.
type Name struct {
	value string
}

// String returns the value of the name.
func (n Name) String() string {
	return n.value
}

// Equal provides support for the go-cmp package and testing.
func (n Name) Equal(n2 Name) bool {
	return n.value == n2.value
}

// MarshalText provides support for logging and any marshal needs.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}

// Parse trims the value and checks it holds between 1 and 120 characters.
func Parse(value string) (Name, error) {
	value = strings.TrimSpace(value)

	if l := utf8.RuneCountInString(value); l == 0 || l > 120 {
		return Name{}, fmt.Errorf("invalid name %q", value)
	}

	return Name{value}, nil
}

// MustParse parses the string value and panics when it is invalid.
func MustParse(value string) Name {
	n, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return n
}

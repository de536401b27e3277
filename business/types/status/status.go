// Package status represents the subscription status of a tenant user.
package status

import "fmt"

// The set of subscription statuses.
var (
	Active  = newStatus("ACTIVE")
	PastDue = newStatus("PAST_DUE")
	Blocked = newStatus("BLOCKED")
)

var statuses = make(map[string]Status)

// Status represents a subscription status.
type Status struct {
	value string
}

func newStatus(s string) Status {
	st := Status{s}
	statuses[s] = st
	return st
}

// String returns the name of the status.
func (s Status) String() string {
	return s.value
}

// IsZero reports whether the status was never set.
func (s Status) IsZero() bool {
	return s.value == ""
}

// Equal provides support for the go-cmp package and testing.
func (s Status) Equal(s2 Status) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// UnmarshalText lets a status travel inside a JSON record.
func (s *Status) UnmarshalText(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Parse parses the string value and returns a status if one exists.
func Parse(value string) (Status, error) {
	s, exists := statuses[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid status %q", value)
	}

	return s, nil
}

// MustParse parses the string value and panics when it is unknown.
func MustParse(value string) Status {
	s, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return s
}

// Package taskstatus represents the workflow state of a task.
package taskstatus

import "fmt"

// The set of task states.
var (
	Pending    = newStatus("PENDING")
	InProgress = newStatus("IN_PROGRESS")
	Completed  = newStatus("COMPLETED")
)

var set = make(map[string]Status)

// Status represents a task state.
type Status struct {
	value string
}

func newStatus(s string) Status {
	st := Status{s}
	set[s] = st
	return st
}

// String returns the name of the state.
func (s Status) String() string {
	return s.value
}

// IsZero reports whether the value was never set.
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

// Parse parses the string value and returns a state if one exists.
func Parse(value string) (Status, error) {
	s, exists := set[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid task status %q", value)
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

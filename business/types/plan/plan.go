// Package plan represents the subscription tier of a tenant.
package plan

import "fmt"

// The set of plans.
var (
	Free       = newPlan("FREE")
	Pro        = newPlan("PRO")
	Enterprise = newPlan("ENTERPRISE")
)

var plans = make(map[string]Plan)

// Plan represents a subscription tier.
type Plan struct {
	value string
}

func newPlan(p string) Plan {
	pl := Plan{p}
	plans[p] = pl
	return pl
}

// String returns the name of the plan.
func (p Plan) String() string {
	return p.value
}

// Paid reports whether the plan is billed through the payment processor.
func (p Plan) Paid() bool {
	return p != Free && p.value != ""
}

// IsZero reports whether the plan was never set.
func (p Plan) IsZero() bool {
	return p.value == ""
}

// Equal provides support for the go-cmp package and testing.
func (p Plan) Equal(p2 Plan) bool {
	return p.value == p2.value
}

// MarshalText provides support for logging and any marshal needs.
func (p Plan) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// UnmarshalText lets a plan travel inside a JSON record.
func (p *Plan) UnmarshalText(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Parse parses the string value and returns a plan if one exists.
func Parse(value string) (Plan, error) {
	p, exists := plans[value]
	if !exists {
		return Plan{}, fmt.Errorf("invalid plan %q", value)
	}

	return p, nil
}

// MustParse parses the string value and panics when it is unknown.
func MustParse(value string) Plan {
	p, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return p
}

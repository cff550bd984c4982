// Package policy defines the tunable thresholds of the alert rules.
//
// The defaults encode the business rules the engine ships with: a task is
// critically overdue two hours past its deadline, the approaching-deadline
// window is one hour, and same-day tasks escalate at 16:00 (warning) and
// 18:00 (critical). Operators can override any of them through a CUE file
// validated against the embedded schema.
package policy

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Policy holds the rule thresholds used by the evaluator.
type Policy struct {
	// OverdueCriticalHours is the number of hours past the deadline after
	// which an overdue alert escalates from high to critical.
	OverdueCriticalHours int `json:"overdueCriticalHours"`

	// ApproachingWindowHours is the size of the pre-deadline window that
	// produces a medium approaching-deadline alert.
	ApproachingWindowHours int `json:"approachingWindowHours"`

	// EndOfDayWarningHour is the local hour (0-23) after which a pending
	// same-day task draws a medium yellow-flag alert.
	EndOfDayWarningHour int `json:"endOfDayWarningHour"`

	// EndOfDayCriticalHour is the local hour (0-23) after which a pending
	// same-day task draws a critical red-flag alert.
	EndOfDayCriticalHour int `json:"endOfDayCriticalHour"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		OverdueCriticalHours:   2,
		ApproachingWindowHours: 1,
		EndOfDayWarningHour:    16,
		EndOfDayCriticalHour:   18,
	}
}

// Validate checks cross-field constraints the CUE schema cannot express
// per-field.
func (p Policy) Validate() error {
	if p.OverdueCriticalHours < 1 {
		return fmt.Errorf("overdueCriticalHours must be >= 1, got %d", p.OverdueCriticalHours)
	}
	if p.ApproachingWindowHours < 1 {
		return fmt.Errorf("approachingWindowHours must be >= 1, got %d", p.ApproachingWindowHours)
	}
	if p.EndOfDayWarningHour >= p.EndOfDayCriticalHour {
		return fmt.Errorf("endOfDayWarningHour (%d) must be earlier than endOfDayCriticalHour (%d)",
			p.EndOfDayWarningHour, p.EndOfDayCriticalHour)
	}
	return nil
}

// Load reads a CUE policy file, unifies it with the embedded schema, and
// decodes the result. Fields the file omits take their schema defaults, so
// an empty file yields Default().
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data, path)
}

// Parse compiles CUE policy source against the embedded schema.
// The filename is used only for error positions.
func Parse(src []byte, filename string) (Policy, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Policy{}, fmt.Errorf("compile policy schema: %w", err)
	}

	val := ctx.CompileBytes(src, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return Policy{}, fmt.Errorf("compile policy file: %w", err)
	}

	merged := schema.Unify(val)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return Policy{}, fmt.Errorf("validate policy: %w", err)
	}

	var p Policy
	if err := merged.LookupPath(cue.ParsePath("policy")).Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// Package config implements the build-time configuration pass. A Builder
// accumulates object declarations, assigns identities in declaration
// order, validates every cross-reference, and computes the hunk pool
// layout; Finalize either produces an immutable kern.ObjectTable or
// reports every violated constraint. Nothing in this package is entered
// again once the kernel runs.
package config

import (
	"fmt"

	"github.com/sarchlab/keron/kern"
)

// An Error describes one violated configuration constraint: the object
// kind, the identity within that kind, and what was wrong. A negative ID
// refers to the configuration as a whole.
type Error struct {
	Kind       kern.ObjectKind
	ID         int
	Constraint string
}

func (e Error) Error() string {
	if e.ID < 0 {
		return fmt.Sprintf("configuration: %s", e.Constraint)
	}
	return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, e.Constraint)
}

package lr0

import (
	"fmt"
	"strings"

	"github.com/dekarrin/parsesmith/internal/grammar"
)

// ActionKind distinguishes the three shapes an ACTION entry can take.
type ActionKind int

const (
	Shift ActionKind = iota
	Reduce
	Accept
)

// Action is one ACTION table entry. A reduce action is stored as the
// structured pair (LHS, RHS) rather than as a re-parsed "r"+lhs+"->"+rhs
// string: the wire-level serialization in String() is derived from this,
// not the other way around, so there is nothing for a consumer to
// mis-parse.
type Action struct {
	Kind ActionKind

	// ShiftState is valid when Kind == Shift.
	ShiftState int

	// ReduceLHS/ReduceRHS are valid when Kind == Reduce: reduce by the rule
	// ReduceLHS -> ReduceRHS.
	ReduceLHS string
	ReduceRHS grammar.Production
}

// Equal reports whether two actions are the same action (used to tell a
// genuine conflict apart from the same action appearing twice).
func (a Action) Equal(o Action) bool {
	if a.Kind != o.Kind {
		return false
	}
	switch a.Kind {
	case Shift:
		return a.ShiftState == o.ShiftState
	case Reduce:
		return a.ReduceLHS == o.ReduceLHS && a.ReduceRHS.Equal(o.ReduceRHS)
	default:
		return true
	}
}

// String renders the action in its wire-level form: "s"+state for shift,
// "r"+lhs+"->"+rhs-with-trailing-space for reduce, "acc" for accept.
func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("s%d", a.ShiftState)
	case Reduce:
		return fmt.Sprintf("r%s->%s ", a.ReduceLHS, strings.Join(a.ReduceRHS, " "))
	case Accept:
		return "acc"
	default:
		return "?"
	}
}

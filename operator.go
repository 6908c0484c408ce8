package cursorpage

import "fmt"

// Operator defines a comparison operator for filtering by column.
// Used in keyset filtering conditions.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq is the equality operator. It is private because we use it
	// ONLY on the tie-break prefix while building filtering conditions.
	operatorEq Operator = "="
)

func (o Operator) Valid() bool {
	return o == OperatorGT || o == OperatorLT
}

// Flip returns the opposite strict comparison. A before-cursor flips the
// operator once; a DESC sort column flips it once more, so two flips cancel.
func (o Operator) Flip() Operator {
	switch o {
	case OperatorGT:
		return OperatorLT
	case OperatorLT:
		return OperatorGT
	default:
		panic(fmt.Errorf("cannot flip operator '%s'", o))
	}
}

package transaction

import "strings"

// Operation is the kind of a transaction.
type Operation string

const (
	OperationCreate    Operation = "CREATE"
	OperationTransfer  Operation = "TRANSFER"
	OperationCompose   Operation = "COMPOSE"
	OperationDecompose Operation = "DECOMPOSE"
)

// Operations lists every supported operation.
var Operations = []Operation{OperationCreate, OperationTransfer, OperationCompose, OperationDecompose}

// ParseOperation normalizes s (case-insensitive, surrounding space ignored)
// and rejects anything that is not a supported operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	switch op {
	case OperationCreate, OperationTransfer, OperationCompose, OperationDecompose:
		return op, nil
	}
	return "", NewUnsupportedOperationError(s)
}

// SpendsOutputs reports whether inputs of this operation reference previous outputs.
func (o Operation) SpendsOutputs() bool {
	return o != OperationCreate
}

func (o Operation) String() string { return string(o) }

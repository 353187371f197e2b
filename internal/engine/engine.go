package engine

import (
	"strings"

	"calcledger/internal/errors"
)

// Type identifies an arithmetic operation.
type Type string

const (
	TypeAdd      Type = "add"
	TypeSubtract Type = "subtract"
	TypeMultiply Type = "multiply"
	TypeDivide   Type = "divide"
)

// aliases maps accepted spellings onto the canonical types.
var aliases = map[string]Type{
	"add":            TypeAdd,
	"addition":       TypeAdd,
	"subtract":       TypeSubtract,
	"subtraction":    TypeSubtract,
	"multiply":       TypeMultiply,
	"multiplication": TypeMultiply,
	"divide":         TypeDivide,
	"division":       TypeDivide,
}

// ParseType normalizes a calculation type string, case-insensitively.
func ParseType(s string) (Type, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", errors.ErrUnknownCalculationType
	}
	return t, nil
}

// Evaluate reduces inputs left to right with the given operation. It requires
// at least two inputs and fails the moment a divisor is zero.
func Evaluate(t Type, inputs []float64) (float64, error) {
	if len(inputs) < 2 {
		return 0, errors.ErrTooFewInputs
	}

	result := inputs[0]
	for _, n := range inputs[1:] {
		switch t {
		case TypeAdd:
			result += n
		case TypeSubtract:
			result -= n
		case TypeMultiply:
			result *= n
		case TypeDivide:
			if n == 0 {
				return 0, errors.ErrDivisionByZero
			}
			result /= n
		default:
			return 0, errors.ErrUnknownCalculationType
		}
	}
	return result, nil
}

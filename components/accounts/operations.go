package accounts

import "fmt"

// Operation names one endpoint.
type Operation string

const (
	OpRegister     Operation = "register"
	OpLogin        Operation = "login"
	OpRequestReset Operation = "request-reset"
	OpPerformReset Operation = "perform-reset"
)

// Operations lists every operation in a stable order.
func Operations() []Operation {
	return []Operation{OpRegister, OpLogin, OpRequestReset, OpPerformReset}
}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OpRegister, OpLogin, OpRequestReset, OpPerformReset:
		return true
	default:
		return false
	}
}

// Purpose is the anti-forgery token purpose bound to op. A token issued for
// one operation does not verify for another.
func (op Operation) Purpose() string {
	return "userforms:" + string(op)
}

// ParseOperation validates a raw operation name.
func ParseOperation(raw string) (Operation, error) {
	op := Operation(raw)
	if !op.Valid() {
		return "", fmt.Errorf("accounts: unknown operation %q", raw)
	}
	return op, nil
}

// Outcome classifies a finished request for logs and metrics.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeInvalid    Outcome = "invalid"
	OutcomeForbidden  Outcome = "forbidden"
	OutcomeBadRequest Outcome = "bad_request"
)

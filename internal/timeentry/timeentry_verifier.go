package timeentry

import "context"

// Verifier checks the clock-in capture against an external service.
// A false result is a rejection; an error means the service could not decide.
type Verifier interface {
	Verify(ctx context.Context, companyID, employeeID string, v Verification) (bool, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, companyID, employeeID string, v Verification) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, companyID, employeeID string, v Verification) (bool, error) {
	return f(ctx, companyID, employeeID, v)
}

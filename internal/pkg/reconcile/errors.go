package reconcile

import "fmt"

// ReconciliationFailure wraps a store-level failure. The dispatcher maps it
// to a server-error acknowledgment; the provider's redelivery is the only
// retry mechanism, so the reconciler itself never loops.
type ReconciliationFailure struct {
	Op  string
	Err error
}

func (e *ReconciliationFailure) Error() string {
	return fmt.Sprintf("reconciliation failed in %s: %v", e.Op, e.Err)
}

func (e *ReconciliationFailure) Unwrap() error {
	return e.Err
}

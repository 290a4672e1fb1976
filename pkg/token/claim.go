package token

import (
	"fmt"
	"sync/atomic"
)

// holder is the id of the capability constructed in this process.
var holder atomic.Pointer[string]

// ClaimError reports a second capability construction in one process.
type ClaimError struct {
	// ID is the capability that attempted the claim.
	ID string
	// Holder is the capability that already holds it.
	Holder string
}

func (e *ClaimError) Error() string {
	if e.ID == e.Holder {
		return fmt.Sprintf("register capability %s constructed twice", e.ID)
	}
	return fmt.Sprintf("register capability %s constructed while %s already holds the registers", e.ID, e.Holder)
}

// TryClaim records id as the process-wide capability holder. It returns a
// *ClaimError if any capability was claimed before.
func TryClaim(id string) error {
	if holder.CompareAndSwap(nil, &id) {
		return nil
	}
	return &ClaimError{ID: id, Holder: *holder.Load()}
}

// Claim is TryClaim that panics on failure. Generated capability
// constructors call it before building any token.
func Claim(id string) {
	if err := TryClaim(id); err != nil {
		panic(err)
	}
}

// Claimed returns the current holder, if any.
func Claimed() (string, bool) {
	id := holder.Load()
	if id == nil {
		return "", false
	}
	return *id, true
}

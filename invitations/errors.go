package invitations

import (
	"errors"
	"fmt"
)

// Sentinel errors for the invitation lifecycle. Handlers map these to HTTP
// statuses and stable response codes; nothing in this package retries them.
var (
	// ErrNotFound means no invitation matches the presented token or code.
	ErrNotFound = errors.New("invitation not found")
	// ErrExpired covers logical expiration: expiresAt has passed, whatever
	// status is stored.
	ErrExpired = errors.New("invitation expired")
	// ErrAlreadyAccepted is returned to validate/accept callers, including
	// the losers of a concurrent accept race.
	ErrAlreadyAccepted = errors.New("invitation already accepted")
	// ErrCancelled means the inviter withdrew the invitation.
	ErrCancelled = errors.New("invitation cancelled")
	// ErrRevoked means an administrator withdrew the invitation.
	ErrRevoked = errors.New("invitation revoked")
	// ErrInvalidState means a transition was attempted from a terminal or
	// expired state.
	ErrInvalidState = errors.New("invalid invitation state for requested transition")
	// ErrConflict means an active invitation already exists for the email.
	// Policy choice: a second request is rejected, never superseded.
	ErrConflict = errors.New("an active invitation already exists for this email")
	// ErrAccountExists tells a new-account caller to sign in instead.
	ErrAccountExists = errors.New("an account already exists for this email")
	// ErrAccountNotFound tells an existing-user caller to switch to the
	// new-account path.
	ErrAccountNotFound = errors.New("no account found for this email")
	// ErrForbidden means the acceptance email does not match the invitation
	// email. Never merged, never corrected.
	ErrForbidden = errors.New("email does not match invitation")
)

// ValidationError reports malformed, user-correctable input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DispatchError reports a failed send attempt. It never rolls back the
// invitation; callers retry via resend.
type DispatchError struct {
	Channel string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch via %s failed: %v", e.Channel, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// ProvisioningError reports a downstream profile-creation failure during
// acceptance. Compensated records whether the rollback of a just-created
// account succeeded.
type ProvisioningError struct {
	Step        string
	Err         error
	Compensated bool
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

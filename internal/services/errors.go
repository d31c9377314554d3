package services

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP statuses; any
// error outside this set is reported generically as an internal failure.
var (
	// Validation (400)
	ErrMissingFields   = errors.New("required fields missing")
	ErrInvalidCapacity = errors.New("capacity must be a positive number")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidOwner    = errors.New("invalid owner selected")
	ErrMessRequired    = errors.New("mess id is required")

	// Not found (404)
	ErrMessNotFound    = errors.New("mess not found")
	ErrOwnerNotFound   = errors.New("owner not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUserNotFound    = errors.New("user not found")

	// Conflict (409)
	ErrOwnerAlreadyAssigned = errors.New("owner is already assigned to a mess")
	ErrMessAlreadyOwned     = errors.New("mess already has an owner")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrMessFull             = errors.New("mess is full, capacity reached")

	// Access (401/403)
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountBlocked      = errors.New("account has been blocked, contact admin")
	ErrSubscriptionExpired = errors.New("subscription has expired, contact admin to renew")
	ErrForbidden           = errors.New("access denied")
)

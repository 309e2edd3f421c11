package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

// business logic errors
var (
	ErrInvalidBid         = errors.New("invalid bid")
	ErrBidTooLow          = errors.New("bid amount too low")
	ErrListingClosed      = errors.New("listing is closed")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
)

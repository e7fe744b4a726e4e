package service

import "errors"

// Errors resolved locally and turned into user-facing responses by the
// HTTP and gRPC layers. Store connectivity failures pass through unwrapped.
var (
	// ErrInvalidURL marks a missing or malformed original URL.
	ErrInvalidURL = errors.New("original URL is missing or not an absolute URL")

	// ErrInvalidAlias marks an alias update that would blank the alias;
	// "leave unchanged" is expressed by omitting the field instead.
	ErrInvalidAlias = errors.New("custom alias must not be empty")

	// ErrAliasTaken means the requested custom alias (or, in the rare
	// race, a generated code on its second insert attempt) is occupied.
	ErrAliasTaken = errors.New("alias already in use")

	// ErrGenerationExhausted is returned when the defensive cap on code
	// generation retries is hit. With a 62^6 code space this signals a
	// store problem rather than namespace exhaustion.
	ErrGenerationExhausted = errors.New("short code generation attempts exhausted")

	// ErrInvalidCredentials covers unknown users, disabled accounts and
	// wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserExists means the username or email is already registered.
	ErrUserExists = errors.New("username or email already in use")
)

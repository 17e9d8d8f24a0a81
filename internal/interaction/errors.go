package interaction

import "errors"

// Sentinel errors for the router.
var (
	// ErrUnknownCustomID indicates a component identifier that does not
	// match the LIB:<ACTION>:<key>=<value> grammar.
	ErrUnknownCustomID = errors.New("interaction: unknown custom id")

	// ErrNoHandler indicates the router config lacks a handler for a
	// declared subcommand or action.
	ErrNoHandler = errors.New("interaction: no handler registered")
)

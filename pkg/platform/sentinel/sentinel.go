// Package sentinel holds infrastructure facts that stores and clients return,
// wrapped or bare. Services translate them into coded domain errors; input
// validation goes straight to pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound: no such entity in the store.
	ErrNotFound = errors.New("not found")
	// ErrExpired: a registration session outlived its idle window.
	ErrExpired = errors.New("expired")
	// ErrInvalidState: the entity cannot take the requested operation, such as a duplicate create.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: a downstream dependency is refusing or failing calls.
	ErrUnavailable = errors.New("unavailable")
)

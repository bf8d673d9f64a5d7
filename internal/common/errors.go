// Package common defines sentinel errors and constants shared by the auth
// service, the gateway and the CLI. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Credential errors.
	ErrorMalformedHash = errors.New("malformed password hash")
)

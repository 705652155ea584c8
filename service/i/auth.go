package i

import (
	dmn "github.com/beka-birhanu/gem-maze/domain"
)

// Authenticator registers players and signs them in.
type Authenticator interface {
	// Register creates a new player account.
	Register(username, password string) error

	// SignIn verifies the credentials and returns the player with a fresh access token.
	SignIn(username, password string) (*dmn.User, string, error)
}

//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// Race-enabled builds run slow enough that cost 14 blows past test
	// timeouts; fall back to the library default.
	return bcrypt.DefaultCost
}

// Package repository implements persistence over MySQL plus the redis-backed
// OTP store. Sentinel errors declared here let handlers map storage outcomes
// to HTTP codes without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrUserNotFound is returned when a user id or email does not resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when creating a user with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrClientNotFound is returned when a client id does not resolve.
var ErrClientNotFound = errors.New("client not found")

// ErrIDNumberExists is returned when a client's id number is already taken.
var ErrIDNumberExists = errors.New("id number already exists")

// ErrLoanNotFound is returned when a loan id does not resolve.
var ErrLoanNotFound = errors.New("loan not found")

// isDuplicateKey reports whether err is the MySQL duplicate-entry error
// (code 1062). A unique-key race on concurrent inserts surfaces here.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

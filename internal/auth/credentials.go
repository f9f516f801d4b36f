// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/subtle"
	"fmt"
)

// Credentials is a submitted username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Verifier checks credentials against the single configured account.
// The password is kept only as an argon2id hash.
type Verifier struct {
	username     string
	passwordHash string
}

// NewVerifier hashes password and returns a Verifier for the pair.
func NewVerifier(username, password string) (*Verifier, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	return &Verifier{username: username, passwordHash: hash}, nil
}

// Verify reports whether c matches the configured account.
func (v *Verifier) Verify(c Credentials) bool {
	// The hash check runs on every attempt, whatever the username.
	pwOK, err := CheckPassword(c.Password, v.passwordHash)
	if err != nil {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(v.username)) == 1
	return userOK && pwOK
}

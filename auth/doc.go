// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens, and ID generation.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

Passwords shorter than MinPasswordLength are rejected with ErrWeakPassword.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets, URL-safe base64 encoded:

	token, err := auth.GenerateSessionToken()

Only an HMAC-SHA256 of the token, keyed with the session salt, is stored:

	hash, err := auth.HashSessionToken(token, salt)

A leaked session table therefore cannot be replayed as bearer tokens.

# IDs

Record IDs are random UUIDs:

	id := auth.NewID()

# Emails

	email, err := auth.NormalizeEmail(" Ada@Example.com ") // "ada@example.com"
*/
package auth

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key checks and token generation utilities.

# Admin Key

The admin API is guarded by a single configured key sent in the
X-Admin-Key header:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

Comparison is constant time. An empty configured key rejects everything.

# Session Keys

Session keys are random 24-byte (192-bit) secrets:

	key, err := auth.GenerateSessionKey()

Keys are URL-safe base64 encoded without padding so they can be used as
cookie values directly. They identify a browser session, not a person.

# IP Hashing

For privacy-preserving request correlation in logs:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth

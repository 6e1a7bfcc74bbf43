// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles account identification and moderator key validation.

# Identity Model

Authentication happens upstream. Every request arrives with an opaque
account id in the X-Account-ID header; this package validates its shape
and nothing else:

	accountID, err := auth.AccountFromRequest(r)

The service never performs login, token issuance, or session management.

# Moderator Keys

Elevated role is proven by a deterministic HMAC over the account id:

	key := auth.GenerateModeratorKey(accountID, cfg.ModeratorKeySalt)

Validation uses constant-time comparison:

	if err := auth.ValidateModeratorKey(accountID, key, salt); err != nil {
		// not a moderator
	}

IsModerator wraps header extraction and validation; a missing or wrong
key means "regular user", never an error.

# IP Hashing

HashIP creates salted one-way hashes for privacy-preserving request logs:

	ipHash := auth.HashIP(clientIP, salt)

Only the first 64 bits are kept - enough for deduplication, useless for
recovery.
*/
package auth

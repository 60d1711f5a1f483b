// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity and id generation.

# Caller Identity

Huddle does not authenticate users itself. The gateway in front of it
sets the X-User-ID header, and handlers read it with:

	userID, err := auth.CallerID(r)

Handlers then check that the user exists in the roster.

# ID Generation

Record ids are random UUIDv4 strings from github.com/google/uuid:

	id := auth.GenerateID()

# Connection Pairs

PairKey builds the order-independent key used to keep one connection per
pair of users:

	auth.PairKey("alice", "bob") == auth.PairKey("bob", "alice")
*/
package auth

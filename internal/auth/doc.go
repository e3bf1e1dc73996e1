// Package auth issues and verifies signed bearer credentials and decides
// whether a request may act on behalf of a user id.
//
// Tokens are HS256 JWTs carrying {userId, iat, exp}. The signing secret is
// read-only after construction, so an Issuer, Verifier and Guard can be
// shared by all request goroutines without locking.
package auth

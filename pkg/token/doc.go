// Package token issues and verifies signed session tokens.
//
// Tokens are compact JWS strings (header.payload.signature, base64url)
// signed with HMAC-SHA256 and a shared secret. The payload carries:
//
//   - id: subject user id
//   - username: subject username
//   - exp: expiry, whole seconds since the Unix epoch
//
// Verification order:
//
//   - structure and algorithm (HS256 only)
//   - signature
//   - expiry (strict: exp must be greater than the current second)
//
// Claims are never trusted before the signature verifies. Whether a verified
// token is still the live session token is decided elsewhere.
package token

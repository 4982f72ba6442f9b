// Package service holds the authentication core of tokgate.
//
// AuthService orchestrates four collaborators, all injected:
//
//   - UserRepository: username to user record, atomic insert-if-absent
//   - SessionRegistry: username to the single live token
//   - TokenCodec: signed, expiring tokens (pkg/token)
//   - PasswordVerifier: plain or bcrypt password comparison
//
// Storage interfaces are declared here and implemented in internal/storage.
// Errors returned by AuthService are *domain.DomainError values; the one
// payload-level failure (token issuance at sign-in) is carried in
// SignInResult.AppErr.
package service

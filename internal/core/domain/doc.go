// Package domain defines the core domain models for tokgate.
//
// Domain models are plain values without IO dependencies. This package
// contains:
//
//   - User: registered account and its public view
//   - Validation: credential and email rules shared by sign-in and sign-up
//   - Errors: DomainError (transport tier) and AppError (payload tier)
package domain

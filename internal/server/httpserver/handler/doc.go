// Package handler implements the HTTP endpoints of tokgate.
//
//   - auth.go: sign_in, sign_up, refresh_token, check_login
//   - echo.go: /json and /form/* request echo routes
//   - health.go: liveness and readiness
//
// Auth failures keep the historical wire format: plain-text 400 bodies for
// sign_in and sign_up, empty 401 bodies for refresh_token and check_login,
// and a 200 {code:-1} payload when a token cannot be issued.
package handler

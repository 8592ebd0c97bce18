// Package log provides secure logging built on top of the standard slog
// package.
//
// The SecureHandler masks sensitive information before it reaches the
// wrapped handler:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Attributes whose key names a password, token, session or secret
//   - Values that look like bearer, basic or JWT credentials
//   - Passwords embedded in URLs and credential-like query parameters
//
// Checked documents routinely link to URLs carrying tokens, so URL values
// are redacted even in verbose mode.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("probe finished",
//	    "url", "https://user:pw@example.com/?token=abc", // password and token masked
//	)
package log

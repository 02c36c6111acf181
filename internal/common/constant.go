// Package common contains shared constants and sentinel errors used across
// the static file service.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// PrivateNamespace prefixes storage keys of private folders. A folder may
// not be named after it.
const PrivateNamespace = "_private"

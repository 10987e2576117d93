// Package common contains shared constants and the error taxonomy used across
// the shop ledger components.
package common

// AuthorizationHeaderName carries the session token on inbound HTTP requests.
const AuthorizationHeaderName = "Authorization"

// Roles produced by this layer. Registration always injects RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

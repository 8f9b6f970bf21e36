package model

// Refresh token failures surface to callers as authentication errors.
var (
	ErrTokenRevoked  = &Error{Kind: ErrAuthentication, Message: "refresh token revoked"}
	ErrTokenExpired  = &Error{Kind: ErrAuthentication, Message: "refresh token expired"}
	ErrTokenMismatch = &Error{Kind: ErrAuthentication, Message: "refresh token mismatch"}
)

package domain

// Identity is the resolved caller identity for one request. It is produced
// once by the authenticator and immutable for the request's lifetime.
// The zero value is the anonymous identity.
type Identity struct {
	User    *User
	Session *Session
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

// Authenticated reports whether the identity carries a verified user.
func (i Identity) Authenticated() bool {
	return i.User != nil && i.Session != nil
}

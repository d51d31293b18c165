package coordinator

// Session is the caller's identity as established by the external identity
// provider. The coordinator never reads ambient auth state; every mutating
// call receives a Session explicitly.
type Session struct {
	Subject string
	Admin   bool
}

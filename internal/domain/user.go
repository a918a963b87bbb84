package domain

// User represents an account record. The password column holds the value
// supplied at registration verbatim; nothing in this system hashes it.
type User struct {
	ID       int64
	Email    string
	Password string
}

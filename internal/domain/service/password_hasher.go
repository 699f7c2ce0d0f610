// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	// Empty input or input longer than 72 bytes is rejected.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a hash. A mismatch is (false, nil);
	// an error means the stored hash itself is unusable.
	Verify(password, hash string) (bool, error)
}

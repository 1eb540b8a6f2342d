package channels

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// User is the raw PII of one audience member. It never reaches a request
// payload; adapters send HashedUser values instead.
type User struct {
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// UserData is the input of audience membership operations.
type UserData struct {
	Users []User `json:"users" yaml:"users"`
	// ExpiresAt is honoured by networks that support membership expiry.
	ExpiresAt string `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// HashedUser holds the digests of a normalized User. Phone is empty when the
// user had no phone number.
type HashedUser struct {
	Email string
	Phone string
}

// Hasher is a one-way digest applied to normalized PII.
type Hasher func(normalized string) string

// SHA256Hex is the default Hasher.
func SHA256Hex(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var phoneFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhone trims a phone number and strips formatting characters.
func NormalizePhone(phone string) string {
	return phoneFormatting.Replace(strings.TrimSpace(phone))
}

// HashUsers validates and hashes data.Users with hash (SHA256Hex when nil).
func HashUsers(data UserData, hash Hasher) ([]HashedUser, error) {
	if len(data.Users) == 0 {
		return nil, InvalidInputf("no users given")
	}
	if hash == nil {
		hash = SHA256Hex
	}

	hashed := make([]HashedUser, 0, len(data.Users))
	for i, u := range data.Users {
		email := NormalizeEmail(u.Email)
		if email == "" {
			return nil, InvalidInputf("user %d has no email", i)
		}
		h := HashedUser{Email: hash(email)}
		if phone := NormalizePhone(u.Phone); phone != "" {
			h.Phone = hash(phone)
		}
		hashed = append(hashed, h)
	}
	return hashed, nil
}

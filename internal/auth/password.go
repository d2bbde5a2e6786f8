package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 11)
	return string(bytes), err
}

// VerifyPassword verifies if the given password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,24}$`)

// ValidateUsername accepts 3-24 letters, digits, or underscores.
// Usernames are case-insensitive; callers store them lowercased.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(strings.ToLower(username)) {
		return fmt.Errorf("username must be 3-24 letters, digits, or underscores")
	}
	return nil
}

func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("email invalid")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password too short (min 8 characters)")
	}
	return nil
}

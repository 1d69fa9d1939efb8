package utils

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RegistrationInput holds the cleaned fields a new account needs.
type RegistrationInput struct {
	Username string
	Email    string
	Password string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateRegistration(in RegistrationInput) error {
	if in.Username == "" {
		return fmt.Errorf("A username is required to register")
	}
	if in.Email == "" {
		return fmt.Errorf("An email is required to register")
	}
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("Email address is not valid")
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("Password must be at least 6 characters")
	}
	return nil
}

func ValidateLogin(email, password string) error {
	if email == "" {
		return fmt.Errorf("An email is required to login")
	}
	if password == "" {
		return fmt.Errorf("A password is required to login")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("Failed to hash password")
	}
	return string(hashed), nil
}

func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

package http

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var errEmailDomain = errors.New("email domain is not allowed")

// Field limits shared with every client.
const (
	maxUsername = 32
	maxEmail    = 64
	minPassword = 8
	maxPassword = 64
)

func checkUsername(username string) error {
	return validation.Validate(username,
		validation.Required,
		validation.Length(1, maxUsername),
	)
}

// checkEmail validates address shape. When domains is non-empty the address
// must additionally belong to one of them; self-registration passes the
// configured allow-list, admin-created registration passes nil.
func checkEmail(email string, domains []string) error {
	if err := validation.Validate(email,
		validation.Required,
		validation.Length(1, maxEmail),
		is.Email,
	); err != nil {
		return err
	}
	if len(domains) == 0 {
		return nil
	}
	for _, domain := range domains {
		if strings.HasSuffix(email, "@"+domain) {
			return nil
		}
	}
	return errEmailDomain
}

func checkPassword(password string) error {
	return validation.Validate(password,
		validation.Required,
		validation.Length(minPassword, maxPassword),
	)
}

package handlers

import (
	"regexp"
	"strings"
)

const (
	emailDomainSuffix = "@gmail.com"
	passwordLength    = 6
	passwordSpecials  = `!@#$%^&*(),.?":{}|<>`
)

// usernamePattern requires lowercase letters followed by a digit. The end is
// deliberately unanchored, so trailing characters are allowed.
var usernamePattern = regexp.MustCompile(`^[a-z]+[0-9]`)

func validEmail(email string) bool {
	return strings.HasSuffix(email, emailDomainSuffix)
}

func validUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// validPassword accepts exactly six characters drawn from letters, digits, and
// the special set, with at least one digit and one special character.
func validPassword(password string) bool {
	if len(password) != passwordLength {
		return false
	}
	var hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		default:
			return false
		}
	}
	return hasDigit && hasSpecial
}

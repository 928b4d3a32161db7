package validators

import (
	"regexp"

	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordPattern = regexp.MustCompile(`^[0-9a-zA-Z@#$%^&+=!]{8,}$`)
)

func ValidateUser(user *models.User) []error {
	var errors []error
	if user == nil {
		errors = append(errors, errs.ErrInvalidRequest)
		return errors
	}

	if user.Email == "" || !ValidateEmail(user.Email) {
		errors = append(errors, errs.ErrInvalidEmail)
	}

	if !ValidatePassword(user.Password) {
		errors = append(errors, errs.ErrInvalidPassword)
	}

	if len(user.FirstName) < 2 {
		errors = append(errors, errs.ErrFirstName)
	}

	if len(user.LastName) < 2 {
		errors = append(errors, errs.ErrLastName)
	}
	return errors
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword accepts at least 8 characters out of letters, digits and
// the @#$%^&+=! set.
func ValidatePassword(password string) bool {
	return passwordPattern.MatchString(password)
}

package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUsernameTaken is shown when registration hits an existing name
	ErrUsernameTaken = errors.New("Username is already taken")
	// ErrInvalidCredentials is the only login failure the user sees
	ErrInvalidCredentials = errors.New("Invalid username or password")
	// ErrNotAuthenticated is returned by actions that need an active account
	ErrNotAuthenticated = errors.New("Log in first")
	// ErrValidation wraps client-side input validation failures
	ErrValidation = errors.New("invalid input")
)

func isUsernameTaken(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "username taken") ||
		strings.Contains(lower, "занят")
}

func (c *Controller) check(v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s %s", ErrValidation, strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

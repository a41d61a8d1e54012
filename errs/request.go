package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Unauthorized = &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrUnauthorized,
		Message:    "You need to log in to see this page.",
	}
)

// NewUnknownAccountError is returned when a login names an email with no local
// account. It is a not-found error reported with 401 so it reads like any
// other failed login.
func NewUnknownAccountError(email string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("account %w", ErrNotFound),
		Details:    email,
		Message: "Bad login. Please check that you're using the correct credentials and try again.\n\n" +
			"You may be seeing this because you have not yet created an account: /create_account",
	}
}

func NewAuthFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrAuthFailed,
		Message:    "Auth Failed! Please hit 'back' and try again.",
		Cause:      cause,
	}
}

// NewIdentityRejectedError reports a non-OK answer from the identity service.
func NewIdentityRejectedError(status int) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrAuthFailed,
		Details:    fmt.Sprintf("identity service returned %d", status),
		Message:    fmt.Sprintf("Auth Failed! (%d). Please hit 'back' and try again.", status),
	}
}

func NewAccountDisabledError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrAccountDisabled,
		Message:    "Your account is disabled. Please contact administrator for help.",
	}
}

func NewAlreadyRegisteredError(email string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrAlreadyRegistered,
		Details:    email,
		Message:    "You already have an account. Please log in instead: /log_in",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingInput,
		Details:    fmt.Sprintf("Missing required field: %s", fieldName),
		Field:      fieldName,
		Message:    fmt.Sprintf("I didn't get your %s. Please go back and try again.", humanize(fieldName)),
	}
}

func NewMalformedFormError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New("malformed form"),
		Message:    "Your form could not be read. Please go back and try again.",
		Cause:      cause,
	}
}

func humanize(field string) string {
	switch field {
	case "feed_url":
		return "feed URL"
	case "email":
		return "email address"
	default:
		return field
	}
}

func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

func IsAccountDisabled(err error) bool {
	return errors.Is(err, ErrAccountDisabled)
}

func IsAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrAlreadyRegistered)
}

func IsMissingInput(err error) bool {
	return errors.Is(err, ErrMissingInput)
}

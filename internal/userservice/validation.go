package userservice

import (
	"errors"
	"regexp"

	"github.com/sushihentaime/blogposts/internal/common"
)

var EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	errLoginFieldsBlank        = "You can't login without an email and password."
	errRegistrationFieldsBlank = "All fields are required."
	errPasswordsMustMatch      = "Passwords must match."
	errAccountFieldsBlank      = "Email and username are required."
	errInvalidEmail            = "Must be a valid email address."
	errPasswordFieldsBlank     = "All password fields are required."
	errNewPasswordsMustMatch   = "New passwords must match."
)

func validateLoginFields(email, password string) error {
	v := common.NewValidator()
	v.Check(v.NotBlank(email, password), "login", errLoginFieldsBlank)
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

func validateRegistrationFields(email, username, password, confirmPassword string) error {
	v := common.NewValidator()
	v.Check(v.NotBlank(email, username, password, confirmPassword), "fields", errRegistrationFieldsBlank)
	if v.Valid() {
		v.Check(password == confirmPassword, "password2", errPasswordsMustMatch)
	}
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

func validateAccountFields(email, username string) error {
	v := common.NewValidator()
	v.Check(v.NotBlank(email, username), "fields", errAccountFieldsBlank)
	if v.Valid() {
		v.Check(EmailRX.MatchString(email), "email", errInvalidEmail)
	}
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

func validatePasswordFields(currentPassword, newPassword, confirmNewPassword string) error {
	v := common.NewValidator()
	v.Check(v.NotBlank(currentPassword, newPassword, confirmNewPassword), "fields", errPasswordFieldsBlank)
	if v.Valid() {
		v.Check(newPassword == confirmNewPassword, "confirm_new_password", errNewPasswordsMustMatch)
	}
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

// validationMessage extracts the dialog text from a validation failure.
func validationMessage(err error) string {
	var ve common.ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return err.Error()
}

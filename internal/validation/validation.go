// Package validation checks user input and reports field-level problems.
// Validators never fail: they return the list of problems found.
package validation

import (
	"net/mail"
	"strings"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// MinPasswordLength is the shortest password accepted.
const MinPasswordLength = 6

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a list of field problems.
type Errors []FieldError

// Details converts the list into an error details map keyed by field.
func (e Errors) Details() map[string]any {
	details := make(map[string]any, len(e))
	for _, fe := range e {
		details[fe.Field] = fe.Message
	}
	return details
}

// ItemInput carries the editable fields of an item report.
type ItemInput struct {
	Description string
	Location    string
	Type        domain.ItemType
	Category    string
	Status      domain.ItemStatus
}

// ValidateItem checks a lost/found report.
func ValidateItem(in ItemInput) Errors {
	var errs Errors
	if strings.TrimSpace(in.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	}
	if strings.TrimSpace(in.Location) == "" {
		errs = append(errs, FieldError{Field: "location", Message: "location is required"})
	}
	switch {
	case in.Type == "":
		errs = append(errs, FieldError{Field: "type", Message: "type is required"})
	case !in.Type.Valid():
		errs = append(errs, FieldError{Field: "type", Message: "type must be Lost or Found"})
	}
	if strings.TrimSpace(in.Category) == "" {
		errs = append(errs, FieldError{Field: "category", Message: "category is required"})
	}
	if in.Status != "" && !in.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "unknown status"})
	}
	return errs
}

// UserInput carries account fields. Empty fields are not checked, so the
// same validator serves partial updates.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Status   domain.UserStatus
}

// ValidateUser checks account fields that are present.
func ValidateUser(in UserInput) Errors {
	var errs Errors
	if in.Email != "" && !validEmail(in.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "invalid email"})
	}
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "password too short"})
	}
	if in.Role != "" && !in.Role.Valid() {
		errs = append(errs, FieldError{Field: "role", Message: "role must be Admin or User"})
	}
	if in.Status != "" && !in.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "status must be active or inactive"})
	}
	return errs
}

// ValidateRegistration requires name, email and password in addition to
// ValidateUser's checks.
func ValidateRegistration(in UserInput) Errors {
	var errs Errors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if in.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	return append(errs, ValidateUser(in)...)
}

// ValidatePassword checks a new password on its own.
func ValidatePassword(password string) Errors {
	if password == "" {
		return Errors{{Field: "password", Message: "password is required"}}
	}
	if len(password) < MinPasswordLength {
		return Errors{{Field: "password", Message: "password too short"}}
	}
	return nil
}

func validEmail(email string) bool {
	if !strings.Contains(email, "@") {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

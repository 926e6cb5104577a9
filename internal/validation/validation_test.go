package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

func fields(errs Errors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateItem(t *testing.T) {
	valid := ItemInput{Description: "Portefeuille marron", Location: "Amphi A", Type: domain.ItemTypeLost, Category: domain.CategoryAccessories}
	assert.Empty(t, ValidateItem(valid))

	assert.Equal(t, []string{"description", "location", "type", "category"}, fields(ValidateItem(ItemInput{Description: "  "})))

	bad := valid
	bad.Type = "Stolen"
	bad.Status = "vanished"
	assert.Equal(t, []string{"type", "status"}, fields(ValidateItem(bad)))
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name string
		in   UserInput
		want []string
	}{
		{"empty is fine", UserInput{}, []string{}},
		{"bad email", UserInput{Email: "not-an-email"}, []string{"email"}},
		{"short password", UserInput{Password: "12345"}, []string{"password"}},
		{"six chars ok", UserInput{Password: "123456"}, []string{}},
		{"bad role", UserInput{Role: "Root"}, []string{"role"}},
		{"bad status", UserInput{Status: "banned"}, []string{"status"}},
		{"all good", UserInput{Email: "sarah.ahmed@emsi.ma", Password: "secret1", Role: domain.RoleUser, Status: domain.UserStatusActive}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(ValidateUser(tt.in)))
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	assert.Equal(t, []string{"name", "email", "password"}, fields(ValidateRegistration(UserInput{})))
	assert.Empty(t, ValidateRegistration(UserInput{Name: "Fatima", Email: "f.zahra@emsi.ma", Password: "hunter22"}))
}

func TestErrorsDetails(t *testing.T) {
	errs := Errors{{Field: "email", Message: "invalid email"}}
	assert.Equal(t, map[string]any{"email": "invalid email"}, errs.Details())
}

func TestValidatePassword(t *testing.T) {
	assert.Equal(t, []string{"password"}, fields(ValidatePassword("")))
	assert.Equal(t, []string{"password"}, fields(ValidatePassword("abc")))
	assert.Empty(t, ValidatePassword("abcdef"))
}

package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Channel  string `json:"channel" validate:"omitempty,oneof=web cli"`
	Pin      string `json:"pin" validate:"omitempty,even_length"`
}

func TestValidator_Struct(t *testing.T) {
	v := New(Rule{
		Tag: "even_length",
		Func: func(fl validator.FieldLevel) bool {
			return len(fl.Field().String())%2 == 0
		},
		Message: "must have even length",
	})

	require.NoError(t, v.Struct(credentials{Email: "a@b.np", Password: "x", Channel: "cli", Pin: "12"}))

	err := v.Struct(credentials{Email: "not-an-email", Channel: "mobile", Pin: "123"})
	require.ErrorIs(t, err, ErrInvalid)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"channel", "email", "password", "pin"}, fieldNames(errs))
	assert.Equal(t, "must be a valid email address", errs.Field("email"))
	assert.Equal(t, "is required", errs.Field("password"))
	assert.Equal(t, "must be one of: web, cli", errs.Field("channel"))
	assert.Equal(t, "must have even length", errs.Field("pin"))
	assert.Empty(t, errs.Field("unknown"))
}

func fieldNames(errs Errors) []string {
	result := make([]string, 0, len(errs))
	for _, err := range errs {
		result = append(result, err.Field)
	}
	return result
}

package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type window struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func init() {
	RegisterStructRule(func(sl validator.StructLevel) {
		w := sl.Current().Interface().(window)
		if w.To < w.From {
			sl.ReportError(w.To, "to", "To", "after_from", "")
		}
	}, "after_from", "{0} must not be before from", window{})
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name          string
		value         any
		expectedField string
		expectedText  string
	}{
		{
			name:  "valid",
			value: account{Name: "ann", Email: "ann@example.com", Password: "secret1"},
		},
		{
			name:          "blank is not enough",
			value:         account{Name: "   ", Email: "ann@example.com", Password: "secret1"},
			expectedField: "account.name",
			expectedText:  "name cannot be blank",
		},
		{
			name:          "json field names",
			value:         account{Name: "ann", Email: "nope", Password: "secret1"},
			expectedField: "account.email",
			expectedText:  "email must be a valid email address",
		},
		{
			name:          "struct rule",
			value:         window{From: 5, To: 1},
			expectedField: "window.to",
			expectedText:  "to must not be before from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.value)
			if tt.expectedField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			vErr := err.(*Error)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.expectedField, vErr.Fields[0].Field)
			assert.Equal(t, tt.expectedText, vErr.Fields[0].Message)
			assert.Equal(t, tt.expectedText, vErr.Error())
		})
	}
}

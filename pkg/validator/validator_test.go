package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

type orderForm struct {
	FullName      string `json:"full_name" validate:"required,max=10"`
	Email         string `json:"email,omitempty" validate:"required,email"`
	Quantity      int    `json:"quantity" validate:"gte=1,lte=99"`
	Price         int64  `json:"price" validate:"gt=0"`
	PaymentMethod string `json:"payment_method" validate:"oneof=card gcash paypal"`
	Image         string `json:"image" validate:"omitempty,url"`
	Note          string `validate:"omitempty,min=3"`
}

func validForm() orderForm {
	return orderForm{
		FullName:      "Juan",
		Email:         "juan@example.com",
		Quantity:      1,
		Price:         3499,
		PaymentMethod: "gcash",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields()
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_MessagesKeyedByJSONName(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*orderForm)
		field  string
		msg    string
	}{
		{"required", func(f *orderForm) { f.FullName = "" }, "full_name", "is required"},
		{"max", func(f *orderForm) { f.FullName = strings.Repeat("x", 11) }, "full_name", "must be at most 10 characters"},
		{"email with options", func(f *orderForm) { f.Email = "nope" }, "email", "must be a valid email address"},
		{"gte", func(f *orderForm) { f.Quantity = 0 }, "quantity", "must be greater than or equal to 1"},
		{"lte", func(f *orderForm) { f.Quantity = 100 }, "quantity", "must be less than or equal to 99"},
		{"gt", func(f *orderForm) { f.Price = 0 }, "price", "must be greater than 0"},
		{"oneof", func(f *orderForm) { f.PaymentMethod = "cash" }, "payment_method", "must be one of: card gcash paypal"},
		{"url", func(f *orderForm) { f.Image = "not a url" }, "image", "must be a valid URL"},
		{"untagged field keeps Go name", func(f *orderForm) { f.Note = "x" }, "Note", "must be at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			fields := fieldsOf(t, Validate(f))
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestValidationError_ErrorJoinsFields(t *testing.T) {
	err := Validate(orderForm{PaymentMethod: "card", Quantity: 1, Price: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'full_name' is required")
	assert.Contains(t, err.Error(), "field 'email' is required")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidate_NonStruct(t *testing.T) {
	err := Validate("not a struct")

	require.Error(t, err)
	var verr *ValidationError
	assert.NotErrorAs(t, err, &verr)
}

func request(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
}

func TestDecodeAndValidate(t *testing.T) {
	var f orderForm
	err := DecodeAndValidate(request(`{"full_name":"Juan","email":"juan@example.com","quantity":2,"price":10,"payment_method":"card"}`), &f)

	require.NoError(t, err)
	assert.Equal(t, 2, f.Quantity)
}

func TestDecodeAndValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
		msg     string
	}{
		{"empty body", ``, true, "request body is empty"},
		{"malformed", `{"full_name":`, true, "invalid request body"},
		{"wrong type", `{"quantity":"two"}`, true, "invalid request body"},
		{"fails validation", `{"full_name":"Juan"}`, false, "field 'email' is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f orderForm
			err := DecodeAndValidate(request(tt.body), &f)

			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, apperrors.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

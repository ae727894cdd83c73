package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giovannicg/INMEDT/pkg/validator"
)

func validCheckoutRequest() CheckoutRequest {
	return CheckoutRequest{
		ShippingAddress: "Av. Amazonas N34-120 y Atahualpa",
		ContactPhone:    "0991234567",
		City:            "Quito",
		Sector:          "norte",
	}
}

func TestCheckoutRequest_Valid(t *testing.T) {
	assert.NoError(t, validator.Validate(validCheckoutRequest()))
}

func TestCheckoutRequest_PhoneIsOptional(t *testing.T) {
	req := validCheckoutRequest()
	req.ContactPhone = ""
	assert.NoError(t, validator.Validate(req))
}

func TestCheckoutRequest_PhoneTooLong(t *testing.T) {
	req := validCheckoutRequest()
	req.ContactPhone = strings.Repeat("9", 21)
	assert.Error(t, validator.Validate(req))
}

func TestCheckoutRequest_MissingSector(t *testing.T) {
	req := validCheckoutRequest()
	req.Sector = ""
	assert.Error(t, validator.Validate(req))
}

func TestCheckoutRequest_MissingShippingAddress(t *testing.T) {
	req := validCheckoutRequest()
	req.ShippingAddress = ""
	assert.Error(t, validator.Validate(req))
}

package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type anonIDPayload struct {
	AnonVisitorID string `validate:"required,min=8,max=64,anonid"`
}

func TestAnonVisitorIDTag(t *testing.T) {
	v := validator.New()
	Register(v)

	valid := []string{
		"anon-visitor-1",
		"f47ac10b-58cc-4372-a567-0e02b2c3d479",
		"AbC123_~.xyz",
	}
	for _, id := range valid {
		require.NoError(t, v.Struct(anonIDPayload{AnonVisitorID: id}), id)
	}

	invalid := []string{
		"short",                  // below minimum length
		"has spaces in it",       // whitespace
		"emoji\U0001F600visitor", // non-ASCII
		"slash/visitor",          // reserved URL character
		"query?visitor=1",        // reserved URL character
	}
	for _, id := range invalid {
		assert.Error(t, v.Struct(anonIDPayload{AnonVisitorID: id}), id)
	}
}

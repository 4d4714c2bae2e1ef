package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Anonymous visitor ids travel in the ?av= redirect query parameter and in
// Redis keys, so they are restricted to URL-safe characters. Length bounds
// live in the min/max tags next to the anonid tag.
var anonIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

func anonVisitorID(fl validator.FieldLevel) bool {
	return anonIDPattern.MatchString(fl.Field().String())
}

// Register adds the custom tags to a standalone validator instance.
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("anonid", anonVisitorID)
}

// RegisterBindings adds the custom tags to Gin's binding validator so
// struct tags in ShouldBindJSON requests can use them.
func RegisterBindings() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

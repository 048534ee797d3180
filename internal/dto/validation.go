package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the request validations the binding tags
// reference. It is called once at startup against gin's validator engine.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("dateymd", validDateYMD)
}

// validDateYMD accepts an empty value or a calendar date in YYYY-MM-DD form.
func validDateYMD(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

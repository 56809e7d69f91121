package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Oslicek/Sazinka-sub005/val"
)

// registerCustomValidators wires the domain validators into gin's
// binding engine.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timeofday", validTimeOfDay)
		v.RegisterValidation("dateonly", validDateOnly)
		v.RegisterValidation("snoozeoffset", validSnoozeOffset)
	}
}

var validTimeOfDay validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val.ValidateTimeOfDay(s) == nil
}

var validDateOnly validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val.ValidateDateOnly(s) == nil
}

var validSnoozeOffset validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val.ValidateSnoozeOffset(s) == nil
}

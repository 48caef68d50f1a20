package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts the first
// failure into a *ValidationError keyed by the wire field name.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("input", err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return required(fe.Field())
	case "email":
		return invalid(fe.Field(), "must be a valid email address")
	case "min":
		return invalid(fe.Field(), "must be at least "+fe.Param()+" characters")
	case "max":
		return invalid(fe.Field(), "must be at most "+fe.Param()+" characters")
	case "oneof":
		return invalid(fe.Field(), "must be one of: "+fe.Param())
	}
	return invalid(fe.Field(), "is invalid")
}

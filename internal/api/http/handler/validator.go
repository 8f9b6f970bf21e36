package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dtroode/jecnagames-server/internal/model"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate reports the first failing field as a validation error.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewErrInvalidField("body", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return model.NewErrMissingField(fe.Field())
	case "email":
		return model.NewErrInvalidField(fe.Field(), "not a valid address")
	case "min":
		return model.NewErrInvalidField(fe.Field(), "at least "+fe.Param()+" characters")
	case "max":
		return model.NewErrInvalidField(fe.Field(), "at most "+fe.Param()+" characters")
	default:
		return model.NewErrInvalidField(fe.Field(), "failed "+fe.Tag()+" check")
	}
}

package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(field.String()) != ""
	})
	validate.RegisterValidation("trimmedemail", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		email := strings.TrimSpace(field.String())
		if email == "" {
			return false
		}
		if len(email) > 254 {
			return false
		}
		return validate.Var(email, "email") == nil
	})
}

type UserCreateDTO struct {
	Email    string `json:"email" validate:"required,notblank,trimmedemail"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,notblank,max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=administrator manager user"`
}

func (r *UserCreateDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Email": {
				"required":     "email, password and name are required",
				"notblank":     "email, password and name are required",
				"trimmedemail": "invalid email",
			},
			"Password": {
				"required": "email, password and name are required",
				"min":      "password must be at least 8 characters",
				"max":      "password is too long",
			},
			"Name": {
				"required": "email, password and name are required",
				"notblank": "email, password and name are required",
				"max":      "name is too long",
			},
			"Role": {
				"oneof": "invalid role",
			},
		}, "invalid request")
	}
	return nil
}

func validationMessage(err error, messages map[string]map[string]string, fallback string) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.New(fallback)
	}
	for _, valErr := range valErrs {
		if fieldMessages, ok := messages[valErr.Field()]; ok {
			if msg, ok := fieldMessages[valErr.Tag()]; ok {
				return errors.New(msg)
			}
			if msg, ok := fieldMessages["*"]; ok {
				return errors.New(msg)
			}
		}
	}
	return errors.New(fallback)
}

package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	passwordMessage        = "Password must be at least 8 characters with 1 uppercase, 1 lowercase, and 1 digit"
	passwordTooLongMessage = "Password must be at most 72 bytes long"

	// bcrypt ignora o rechaza lo que pase de 72 bytes, no de 72 caracteres.
	maxPasswordBytes = 72
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return passwordPolicy(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return v
}

// passwordPolicy: al menos 8 caracteres, un dígito, una minúscula y una mayúscula,
// las tres clases en ASCII.
func passwordPolicy(pw string) bool {
	if utf8.RuneCountInString(pw) < 8 {
		return false
	}
	var digit, lower, upper bool
	for _, r := range pw {
		switch {
		case '0' <= r && r <= '9':
			digit = true
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		}
	}
	return digit && lower && upper
}

// ValidatePassword aplica la política de contraseñas fuera de un struct.
func ValidatePassword(pw string) error {
	if len(pw) > maxPasswordBytes {
		return ValidationError{Message: passwordTooLongMessage}
	}
	if !passwordPolicy(pw) {
		return ValidationError{Message: passwordMessage}
	}
	return nil
}

// validateStruct valida input y devuelve sólo la primera violación.
func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return ValidationError{Message: fieldMessage(fieldErrs[0])}
	}
	return err
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "password":
		return passwordMessage
	case "pwbytes":
		return passwordTooLongMessage
	case "min":
		if isString {
			return fmt.Sprintf("%q must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%q must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

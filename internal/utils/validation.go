package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("phone", validatePhone)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidationDetails flattens validator errors into a field -> message map
// for the response envelope.
func ValidationDetails(err error) map[string]string {
	details := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		details["request"] = err.Error()
		return details
	}
	for _, fe := range validationErrors {
		details[strings.ToLower(fe.Field())] = "failed on '" + fe.Tag() + "' validation"
	}
	return details
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

func IsValidPhone(phone string) bool {
	phoneRegex := regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	return phoneRegex.MatchString(strings.TrimSpace(phone))
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

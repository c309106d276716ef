package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Coupon codes as stores print them: 3-32 chars, uppercase alphanumerics with
// dashes, no leading or trailing dash.
var couponCodeRe = regexp.MustCompile(`^[A-Z0-9]+(?:-[A-Z0-9]+)*$`)

// Init registers custom rules on gin's binding validator. Call once at startup.
func Init() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine type")
	}
	if err := v.RegisterValidation("couponcode", validateCouponCode); err != nil {
		return err
	}
	return nil
}

func validateCouponCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) < 3 || len(code) > 32 {
		return false
	}
	return couponCodeRe.MatchString(code)
}

// FormatErrors turns validator errors into the per-field messages exposed in
// the response envelope.
func FormatErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "couponcode":
		return fmt.Sprintf("%s must be 3-32 uppercase letters, digits or dashes", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormValidator plugs go-playground/validator into echo. Messages name each
// field by the key the user typed it under (form tag, then json tag), so
// "regNumber is required" lines up with the admin form.
type FormValidator struct {
	v *validator.Validate
}

func NewValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(inputName)
	return &FormValidator{v: v}
}

// Validate satisfies echo.Validator. All failures are joined into one line
// so the page can show them in a single banner.
func (fv *FormValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = describe(fe)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func inputName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

func describe(fe validator.FieldError) string {
	field, p := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return field + " must be one of: " + p
	case "nefield":
		return field + " must differ from " + strings.ToLower(p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, p)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, p)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, p)
	}
	return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate - общий валидатор DTO. Имена полей в сообщениях берутся из тега json.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationError собирает сообщения по всем полям через "; ".
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldErrorMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: обязательное поле", field)
	case "email":
		return fmt.Sprintf("%s: некорректный email", field)
	case "numeric":
		return fmt.Sprintf("%s: допустимы только цифры", field)
	case "oneof":
		return fmt.Sprintf("%s: допустимые значения: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len":
		return fmt.Sprintf("%s: длина должна быть %s", field, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("%s: минимум %s символов", field, fe.Param())
		}
		return fmt.Sprintf("%s: минимум %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s: максимум %s символов", field, fe.Param())
		}
		return fmt.Sprintf("%s: максимум %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: должно быть больше %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: некорректное значение", field)
	}
}

package helper

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ghPhoneRe = regexp.MustCompile(`^\+233\d{9}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

const DateLayout = "2006-01-02"

// Validator is shared; validator.Validate caches struct metadata and is goroutine safe.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("gh_phone", func(fl validator.FieldLevel) bool {
			return ghPhoneRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func IsGhanaPhone(s string) bool { return ghPhoneRe.MatchString(s) }

// ValidateStruct returns nil or a ValidationError naming the first failing field.
func ValidateStruct(s any) *AppError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationError("Invalid input")
	}
	fields := map[string][]string{}
	first := ""
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		msg := describe(path, fe)
		fields[path] = append(fields[path], msg)
		if first == "" {
			first = msg
		}
	}
	return ValidationFieldsError(first, fields)
}

// fieldPath drops the root struct name: "RegistrationPayload.contact.email" → "contact.email".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "email":
		return "Invalid email address"
	case "gh_phone":
		return path + " must be in format +233XXXXXXXXX"
	case "ymd":
		return path + " must be a date in YYYY-MM-DD format"
	case "min":
		if fe.Kind() == reflect.Slice {
			return path + " must have at least " + fe.Param() + " item(s)"
		}
		return path + " must be at least " + fe.Param() + " characters"
	case "max":
		return path + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return path + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return path + " must be greater than " + fe.Param()
	case "len":
		return path + " must be exactly " + fe.Param() + " characters"
	case "url":
		return path + " must be a valid URL"
	case "eq":
		return path + " must be accepted"
	default:
		return path + " is invalid"
	}
}

// Package validation registers the custom binding tags shared by request
// handlers and the service layer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipebox/backend/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

var (
	once     sync.Once
	instance *validator.Validate

	ginOnce sync.Once
	ginErr  error
)

// Register installs the custom tags and json field naming on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	tags := map[string]validator.Func{
		"isodate":    isISODate,
		"mealtype":   oneOf(models.MealTypes...),
		"difficulty": oneOf(models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard),
		"skill":      oneOf(models.SkillBeginner, models.SkillIntermediate, models.SkillAdvanced),
		"permission": oneOf(models.PermissionView, models.PermissionEdit),
		"password":   isPassword,
		"username":   isUsername,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// Validator returns a validator configured like gin's, for values that do
// not arrive through request binding.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.SetTagName("binding")
		if err := Register(instance); err != nil {
			panic(err)
		}
	})
	return instance
}

// RegisterGin installs the custom tags on gin's binding validator. It is
// safe to call more than once.
func RegisterGin() error {
	ginOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			ginErr = errors.New("gin validator engine is not validator/v10")
			return
		}
		ginErr = Register(v)
	})
	return ginErr
}

// Struct validates s with the shared validator.
func Struct(s interface{}) error {
	return Validator().Struct(s)
}

// FieldErrors flattens validator errors into field -> message.
// It returns nil when err carries no field errors.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	// drop the top-level struct name
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return "must be a valid id"
	case "url":
		return "must be a valid URL"
	case "isodate":
		return "must be a date formatted YYYY-MM-DD"
	case "mealtype":
		return "must be one of: " + strings.Join(models.MealTypes, ", ")
	case "difficulty":
		return "must be one of: easy, medium, hard"
	case "skill":
		return "must be one of: beginner, intermediate, advanced"
	case "permission":
		return "must be one of: view, edit"
	case "password":
		return "must contain at least one letter and one digit"
	case "username":
		return "must be 3-30 letters, digits or underscores"
	default:
		return "is invalid"
	}
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func isPassword(fl validator.FieldLevel) bool {
	var letter, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func isUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

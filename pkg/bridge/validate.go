package bridge

import (
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return fld.Tag.Get("arg")
		})
		_ = validate.RegisterValidation("abspath", absPathValidator)
		_ = validate.RegisterValidation("basename", baseNameValidator)
	})
	return validate
}

// IsAbsPath reports whether p is absolute and already clean.
func IsAbsPath(p string) bool {
	return p != "" && filepath.IsAbs(p) && filepath.Clean(p) == p && !strings.ContainsRune(p, 0)
}

// IsBaseName reports whether name is a single path element.
func IsBaseName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(name, "/\x00"+string(filepath.Separator))
}

func absPathValidator(fl validator.FieldLevel) bool {
	return IsAbsPath(fl.Field().String())
}

func baseNameValidator(fl validator.FieldLevel) bool {
	return IsBaseName(fl.Field().String())
}

// Validate checks the arguments of a request message. Failures are
// invalid_target errors naming the first offending argument.
func Validate(req any) error {
	err := validatorInstance().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return InvalidTarget("invalid arguments: %v", err)
	}
	return InvalidTarget("%s", formatValidationError(verrs[0]))
}

func formatValidationError(fe validator.FieldError) string {
	value, _ := fe.Value().(string)
	switch fe.Tag() {
	case "abspath":
		return fe.Field() + " must be an absolute, clean path, got " + strconv.Quote(value)
	case "basename":
		return fe.Field() + " must be a single file or folder name, got " + strconv.Quote(value)
	default:
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
}

package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the process-wide validator, registering the
// enum rules and JSON field naming on first use. validator.Validate caches
// struct metadata and is safe for concurrent use.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("learning_style", func(fl validator.FieldLevel) bool {
			return LearningStyle(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
			return Difficulty(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// ValidateProfile checks an inbound profile: time_per_day must be positive,
// viewed ids non-negative, and learning_style / preferred_difficulty must be
// known enum values. It returns a *ValidationError listing every bad field.
func ValidateProfile(p *UserProfile) error {
	if p == nil {
		return &ValidationError{Fields: []FieldError{{Field: "profile", Tag: "required", Message: "profile is required"}}}
	}
	err := validatorInstance().Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("domain: validate profile: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath strips the struct name prefix from the namespace so nested
// elements read as "viewed_content_ids[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "learning_style":
		return fmt.Sprintf("%q is not one of visual, reading, hands-on", fe.Value())
	case "difficulty":
		return fmt.Sprintf("%q is not one of Beginner, Intermediate, Advanced", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

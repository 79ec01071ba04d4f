package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type Validation struct {
	validator *validator.Validate
}

func NewValidation() *Validation {
	v := validator.New()
	v.RegisterValidation("slug", validateSlug)
	return &Validation{validator: v}
}

func validateSlug(fl validator.FieldLevel) bool {
	// slug must be lowercase words joined by single hyphens
	return slugPattern.MatchString(fl.Field().String())
}

// ValidationError wraps the validator's FieldError
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", v.Field, v.Message)
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

// Error joins the messages so ValidationErrors can be returned as an error
func (ve ValidationErrors) Error() string {
	return strings.Join(ve.Errors(), "; ")
}

// Errors converts the slice to a slice of strings
func (ve ValidationErrors) Errors() []string {
	errs := []string{}
	for _, v := range ve {
		errs = append(errs, v.Error())
	}
	return errs
}

func (v *Validation) Validate(i interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}
	for _, ve := range validationErrors {
		errors = append(errors, ValidationError{
			Field:   ve.Namespace(),
			Message: fmt.Sprintf("failed on the '%s' tag", ve.Tag()),
		})
	}

	return errors
}

// ValidSlug reports whether s is usable as a URL slug
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

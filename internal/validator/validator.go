// Package validator wraps go-playground/validator with the rules used by request DTOs.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator is a wrapper around the actual validator. Field names in errors are the json names.
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validator: v}
}

func (v *Validator) Register(rules ...ValidationRule) {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = append(v.rules, rules...)
}

func (v *Validator) Struct(s any) error {
	return v.validator.Struct(s)
}

var (
	defaultValidator *Validator
	defaultOnce      sync.Once
)

// Default returns a validator with every compliance rule registered.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = NewValidator()
		defaultValidator.Register(NewComplianceValidationRules()...)
	})
	return defaultValidator
}

// Struct validates s with the default validator.
func Struct(s any) error {
	return Default().Struct(s)
}

// FieldErrors flattens a validation error into field → message pairs.
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
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "cas_number":
		return "must be a CAS registry number such as 80-05-7"
	case "chemical_status":
		return "must be one of allowed, restricted, prohibited, unknown"
	case "risk_level":
		return "must be one of low, medium, high, unknown"
	case "calculation_case":
		return "must be known_contact_and_weight or unknown_contact_and_weight"
	case "regulation_id":
		return "must be lowercase letters, digits and dashes"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must have at least " + fe.Param() + " entries"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be an email address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a URL"
	}
	return "failed " + fe.Tag() + " validation"
}

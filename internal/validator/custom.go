package validator

import (
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

var (
	casNumberRegex    = regexp.MustCompile(`^\d{2,7}-\d{2}-\d$`)
	regulationIDRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// stringField returns the field as a string, dereferencing pointers. A nil pointer reports ok=false.
func stringField(fl validator.FieldLevel) (string, bool) {
	f := fl.Field()
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return "", false
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.String {
		return "", false
	}
	return f.String(), true
}

// casNumberValidator accepts an empty value; pair with required when the CAS number is mandatory.
func casNumberValidator(fl validator.FieldLevel) bool {
	val, ok := stringField(fl)
	if !ok || val == "" {
		return true
	}
	return casNumberRegex.MatchString(val)
}

func chemicalStatusValidator(fl validator.FieldLevel) bool {
	val, ok := stringField(fl)
	if !ok {
		return true
	}
	return model.ChemicalStatus(val).Valid()
}

func riskLevelValidator(fl validator.FieldLevel) bool {
	val, ok := stringField(fl)
	if !ok {
		return true
	}
	return model.RiskLevel(val).Valid()
}

func calculationCaseValidator(fl validator.FieldLevel) bool {
	val, ok := stringField(fl)
	if !ok {
		return true
	}
	return model.CalculationCase(val).Valid()
}

func regulationIDValidator(fl validator.FieldLevel) bool {
	val, ok := stringField(fl)
	if !ok {
		return true
	}
	return regulationIDRegex.MatchString(val)
}

// IsCASNumber reports whether s has the shape of a CAS registry number.
func IsCASNumber(s string) bool {
	return casNumberRegex.MatchString(s)
}

// IsRegulationID reports whether s is a valid regulation identifier.
func IsRegulationID(s string) bool {
	return regulationIDRegex.MatchString(s)
}

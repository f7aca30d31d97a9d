package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewComplianceValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("cas_number", casNumberValidator),
		},
		{
			Rule: registerFn("chemical_status", chemicalStatusValidator),
		},
		{
			Rule: registerFn("risk_level", riskLevelValidator),
		},
		{
			Rule: registerFn("calculation_case", calculationCaseValidator),
		},
		{
			Rule: registerFn("regulation_id", regulationIDValidator),
		},
	}
}

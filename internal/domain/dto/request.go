// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/validator"
)

// SubstanceInput is one substance of a stateless calculation.
type SubstanceInput struct {
	Name          string  `json:"name" example:"Bisphenol A"`
	CASNumber     string  `json:"cas_number,omitempty" example:"80-05-7"`
	Contamination float64 `json:"contamination" example:"1"`
	// ReferenceLimits maps regulation ids to SML values in mg/kg.
	ReferenceLimits map[model.RegulationID]float64 `json:"reference_limits,omitempty" validate:"omitempty,dive,keys,regulation_id,endkeys,gte=0"`
} // @name SubstanceInput

// CalculateRequest is the body of the stateless calculation and readiness endpoints.
//
// @Description Packaging parameters and substances evaluated in one call
type CalculateRequest struct {
	// Case defaults to known_contact_and_weight. The unknown case forces A=600 and F=1000.
	Case       model.CalculationCase     `json:"case,omitempty" validate:"omitempty,calculation_case" example:"known_contact_and_weight"`
	Parameters model.PackagingParameters `json:"parameters"`
	Substances []SubstanceInput          `json:"substances" validate:"required,min=1,max=500,dive"`
	// Regulations fixes the verdict columns. When empty the union of the substances' limits is used.
	Regulations []model.RegulationID `json:"regulations,omitempty" validate:"omitempty,dive,regulation_id"`
} // @name CalculateRequest

// Validate checks the request with the registered rules.
func (r *CalculateRequest) Validate() error {
	return validator.Struct(r)
}

// EffectiveParameters applies the case lock to the submitted parameters.
func (r *CalculateRequest) EffectiveParameters() model.PackagingParameters {
	c := r.Case
	if c == "" {
		c = model.CaseKnownContactAndWeight
	}
	return r.Parameters.ApplyCase(c)
}

// ToSubstances converts the inputs into numbered substances. Ids start at 1 in request order.
func (r *CalculateRequest) ToSubstances() []model.Substance {
	out := make([]model.Substance, 0, len(r.Substances))
	for i, in := range r.Substances {
		out = append(out, model.Substance{
			ID:              model.SubstanceID(i + 1),
			Name:            in.Name,
			CASNumber:       in.CASNumber,
			Contamination:   in.Contamination,
			FromDatabase:    len(in.ReferenceLimits) > 0,
			ReferenceLimits: in.ReferenceLimits,
		})
	}
	return out
}

// SetCaseRequest selects the calculation case of a session.
type SetCaseRequest struct {
	Case model.CalculationCase `json:"case" validate:"required,calculation_case" example:"unknown_contact_and_weight"`
} // @name SetCaseRequest

// Validate checks the request with the registered rules.
func (r *SetCaseRequest) Validate() error {
	return validator.Struct(r)
}

// UpdateParametersRequest patches the packaging parameters of a session. Omitted fields are kept.
type UpdateParametersRequest struct {
	ContactSurfaceArea *float64 `json:"contact_surface_area,omitempty" example:"600"`
	Thickness          *float64 `json:"thickness,omitempty" example:"0.1"`
	Density            *float64 `json:"density,omitempty" example:"1"`
	FoodWeight         *float64 `json:"food_weight,omitempty" example:"1000"`
} // @name UpdateParametersRequest

// UpdateSubstanceRequest patches one substance of a session. Omitted fields are kept.
type UpdateSubstanceRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=200" example:"Bisphenol A"`
	CASNumber     *string  `json:"cas_number,omitempty" validate:"omitempty,max=32" example:"80-05-7"`
	Contamination *float64 `json:"contamination,omitempty" example:"2.5"`
} // @name UpdateSubstanceRequest

// Validate checks the request with the registered rules.
func (r *UpdateSubstanceRequest) Validate() error {
	return validator.Struct(r)
}

// SelectReferenceRequest copies a catalog chemical into a session substance.
type SelectReferenceRequest struct {
	ChemicalID string `json:"chemical_id" validate:"required,hexadecimal,len=24" example:"65f1c0a2b9d3e4f5a6b7c8d9"`
} // @name SelectReferenceRequest

// Validate checks the request with the registered rules.
func (r *SelectReferenceRequest) Validate() error {
	return validator.Struct(r)
}

// SetColumnsRequest fixes the regulation columns of a session. An empty list restores the derived union.
type SetColumnsRequest struct {
	Regulations []model.RegulationID `json:"regulations" validate:"omitempty,max=50,dive,regulation_id"`
} // @name SetColumnsRequest

// Validate checks the request with the registered rules.
func (r *SetColumnsRequest) Validate() error {
	return validator.Struct(r)
}

// LimitRequest is one SML entry of a chemical.
type LimitRequest struct {
	RegulationID model.RegulationID `json:"regulation_id" validate:"required,regulation_id" example:"eu-10-2011"`
	SML          *float64           `json:"sml" validate:"required,gte=0" example:"0.05"`
} // @name LimitRequest

// ChemicalRequest creates a catalog chemical.
type ChemicalRequest struct {
	Name       string               `json:"name" validate:"required,max=200" example:"Bisphenol A"`
	CASNumber  string               `json:"cas_number,omitempty" validate:"cas_number" example:"80-05-7"`
	Status     model.ChemicalStatus `json:"status,omitempty" validate:"omitempty,chemical_status" example:"restricted"`
	RiskLevel  model.RiskLevel      `json:"risk_level,omitempty" validate:"omitempty,risk_level" example:"high"`
	Categories []string             `json:"categories,omitempty" validate:"omitempty,dive,required,max=64"`
	Limits     []LimitRequest       `json:"limits,omitempty" validate:"omitempty,dive"`
} // @name ChemicalRequest

// Validate checks the request with the registered rules.
func (r *ChemicalRequest) Validate() error {
	return validator.Struct(r)
}

// ToModel converts the request into a catalog entry.
func (r *ChemicalRequest) ToModel() *model.Chemical {
	c := &model.Chemical{
		Name:       r.Name,
		CASNumber:  r.CASNumber,
		Status:     r.Status,
		RiskLevel:  r.RiskLevel,
		Categories: r.Categories,
		Limits:     make([]model.RegulationLimit, 0, len(r.Limits)),
	}
	for _, l := range r.Limits {
		sml := 0.0
		if l.SML != nil {
			sml = *l.SML
		}
		c.Limits = append(c.Limits, model.RegulationLimit{RegulationID: l.RegulationID, SML: sml})
	}
	return c
}

// UpdateChemicalRequest patches a catalog chemical. Limits are edited through the limit endpoints.
type UpdateChemicalRequest struct {
	Name       *string               `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	CASNumber  *string               `json:"cas_number,omitempty" validate:"omitempty,cas_number"`
	Status     *model.ChemicalStatus `json:"status,omitempty" validate:"omitempty,chemical_status"`
	RiskLevel  *model.RiskLevel      `json:"risk_level,omitempty" validate:"omitempty,risk_level"`
	Categories []string              `json:"categories,omitempty" validate:"omitempty,dive,required,max=64"`
} // @name UpdateChemicalRequest

// Validate checks the request with the registered rules.
func (r *UpdateChemicalRequest) Validate() error {
	return validator.Struct(r)
}

// SetLimitRequest adds or replaces the SML of a chemical under a regulation.
type SetLimitRequest struct {
	SML *float64 `json:"sml" validate:"required,gte=0" example:"0.6"`
} // @name SetLimitRequest

// Validate checks the request with the registered rules.
func (r *SetLimitRequest) Validate() error {
	return validator.Struct(r)
}

// RegulationRequest creates a regulation. An empty id is derived from the name.
type RegulationRequest struct {
	ID            model.RegulationID `json:"id,omitempty" validate:"omitempty,regulation_id" example:"eu-10-2011"`
	Name          string             `json:"name" validate:"required,max=200" example:"Regulation (EU) 10/2011"`
	Country       string             `json:"country" validate:"required,max=100" example:"European Union"`
	Region        string             `json:"region,omitempty" validate:"max=100" example:"Europe"`
	Description   string             `json:"description,omitempty" validate:"max=20000"`
	Link          string             `json:"link,omitempty" validate:"omitempty,url"`
	Categories    []string           `json:"categories,omitempty" validate:"omitempty,dive,required,max=64"`
	Featured      bool               `json:"featured,omitempty"`
	UpdateDetails string             `json:"update_details,omitempty" validate:"max=2000"`
} // @name RegulationRequest

// Validate checks the request with the registered rules.
func (r *RegulationRequest) Validate() error {
	return validator.Struct(r)
}

// ToModel converts the request into a regulation.
func (r *RegulationRequest) ToModel() *model.Regulation {
	return &model.Regulation{
		ID:            r.ID,
		Name:          r.Name,
		Country:       r.Country,
		Region:        r.Region,
		Description:   r.Description,
		Link:          r.Link,
		Categories:    r.Categories,
		Featured:      r.Featured,
		UpdateDetails: r.UpdateDetails,
	}
}

// UpdateRegulationRequest patches a regulation. Omitted fields are kept.
type UpdateRegulationRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Country       *string  `json:"country,omitempty" validate:"omitempty,min=1,max=100"`
	Region        *string  `json:"region,omitempty" validate:"omitempty,max=100"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=20000"`
	Link          *string  `json:"link,omitempty" validate:"omitempty,url"`
	Categories    []string `json:"categories,omitempty" validate:"omitempty,dive,required,max=64"`
	UpdateDetails *string  `json:"update_details,omitempty" validate:"omitempty,max=2000"`
} // @name UpdateRegulationRequest

// Validate checks the request with the registered rules.
func (r *UpdateRegulationRequest) Validate() error {
	return validator.Struct(r)
}

// FeatureRequest toggles the featured flag of a regulation.
type FeatureRequest struct {
	Featured *bool `json:"featured" validate:"required" example:"true"`
} // @name FeatureRequest

// Validate checks the request with the registered rules.
func (r *FeatureRequest) Validate() error {
	return validator.Struct(r)
}

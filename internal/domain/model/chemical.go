package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChemicalStatus is the regulatory standing of a chemical.
type ChemicalStatus string

const (
	StatusAllowed    ChemicalStatus = "allowed"
	StatusRestricted ChemicalStatus = "restricted"
	StatusProhibited ChemicalStatus = "prohibited"
	StatusUnknown    ChemicalStatus = "unknown"
)

// Valid reports whether s is a known status.
func (s ChemicalStatus) Valid() bool {
	switch s {
	case StatusAllowed, StatusRestricted, StatusProhibited, StatusUnknown:
		return true
	}
	return false
}

// RiskLevel is the hazard classification shown next to a chemical.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskUnknown:
		return true
	}
	return false
}

// RegulationLimit is the SML of a chemical under one regulation.
type RegulationLimit struct {
	RegulationID RegulationID `bson:"regulation_id" json:"regulation_id" example:"eu-10-2011"`
	// SML is the specific migration limit in mg/kg.
	SML float64 `bson:"sml" json:"sml" example:"0.05"`
}

// Chemical is a catalog entry that calculations can reference.
type Chemical struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name" example:"Bisphenol A"`
	CASNumber  string             `bson:"cas_number,omitempty" json:"cas_number,omitempty" example:"80-05-7"`
	Status     ChemicalStatus     `bson:"status" json:"status" example:"restricted"`
	RiskLevel  RiskLevel          `bson:"risk_level" json:"risk_level" example:"high"`
	Limits     []RegulationLimit  `bson:"limits" json:"limits"`
	Categories []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	CreatedBy  string             `bson:"created_by,omitempty" json:"created_by,omitempty"`
	UpdatedBy  string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// LimitFor returns the SML registered under the regulation.
func (c *Chemical) LimitFor(id RegulationID) (float64, bool) {
	for _, l := range c.Limits {
		if l.RegulationID == id {
			return l.SML, true
		}
	}
	return 0, false
}

// SetLimit adds or replaces the SML for a regulation.
func (c *Chemical) SetLimit(id RegulationID, sml float64) {
	for i := range c.Limits {
		if c.Limits[i].RegulationID == id {
			c.Limits[i].SML = sml
			return
		}
	}
	c.Limits = append(c.Limits, RegulationLimit{RegulationID: id, SML: sml})
}

// RemoveLimit drops the SML for a regulation and reports whether one existed.
func (c *Chemical) RemoveLimit(id RegulationID) bool {
	for i := range c.Limits {
		if c.Limits[i].RegulationID == id {
			c.Limits = append(c.Limits[:i], c.Limits[i+1:]...)
			return true
		}
	}
	return false
}

// Matches reports whether the fragment is a case-insensitive substring of the name
// or a substring of the CAS number. An empty fragment matches everything.
func (c *Chemical) Matches(fragment string) bool {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), strings.ToLower(fragment)) {
		return true
	}
	return c.CASNumber != "" && strings.Contains(c.CASNumber, fragment)
}

// ReferenceSubstance converts the chemical into a lookup row.
func (c *Chemical) ReferenceSubstance() ReferenceSubstance {
	limits := make(map[RegulationID]float64, len(c.Limits))
	for _, l := range c.Limits {
		limits[l.RegulationID] = l.SML
	}
	return ReferenceSubstance{
		ChemicalID: c.ID.Hex(),
		Name:       c.Name,
		CASNumber:  c.CASNumber,
		Limits:     limits,
	}
}

// ReferenceSubstance is a known substance returned by a lookup, with its regulation limits.
type ReferenceSubstance struct {
	ChemicalID string                   `json:"chemical_id" example:"65f1c0a2b9d3e4f5a6b7c8d9"`
	Name       string                   `json:"name" example:"Bisphenol A"`
	CASNumber  string                   `json:"cas_number" example:"80-05-7"`
	Limits     map[RegulationID]float64 `json:"regulation_limits"`
}

// ChemicalFilter narrows a catalog search.
type ChemicalFilter struct {
	Query      string
	Status     ChemicalStatus
	Categories []string
	// RegulationIDs keeps chemicals with a limit under any of these regulations.
	RegulationIDs []RegulationID
	Limit         int
	Skip          int
}

package model

import (
	"strings"
	"time"
)

// Regulation is a regulatory text that defines migration limits for a jurisdiction.
type Regulation struct {
	ID            RegulationID `bson:"_id" json:"id" example:"eu-10-2011"`
	Name          string       `bson:"name" json:"name" example:"Regulation (EU) 10/2011"`
	Country       string       `bson:"country" json:"country" example:"European Union"`
	Region        string       `bson:"region,omitempty" json:"region,omitempty" example:"Europe"`
	Description   string       `bson:"description,omitempty" json:"description,omitempty"`
	Link          string       `bson:"link,omitempty" json:"link,omitempty"`
	Categories    []string     `bson:"categories,omitempty" json:"categories,omitempty"`
	Featured      bool         `bson:"featured" json:"featured"`
	LastUpdated   *time.Time   `bson:"last_updated,omitempty" json:"last_updated,omitempty"`
	UpdateDetails string       `bson:"update_details,omitempty" json:"update_details,omitempty"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updated_at"`
}

// HasAnyCategory reports whether the regulation carries one of the categories.
// An empty list matches everything.
func (r *Regulation) HasAnyCategory(categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, want := range categories {
		for _, have := range r.Categories {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}

// RegulationFilter narrows a regulation browse.
type RegulationFilter struct {
	Country     string
	Query       string
	Categories  []string
	UpdatedOnly bool
	Featured    *bool
}

// CountryRegulations groups the regulations of one country.
type CountryRegulations struct {
	Country     string       `json:"country" example:"European Union"`
	Regulations []Regulation `json:"regulations"`
}

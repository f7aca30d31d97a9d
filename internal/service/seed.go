package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
)

// Reference regulation ids.
const (
	RegEU10_2011     model.RegulationID = "eu-10-2011"
	RegEC1935_2004   model.RegulationID = "ec-1935-2004"
	RegEC2023_2006   model.RegulationID = "ec-2023-2006"
	RegFDA175_178    model.RegulationID = "fda-21-cfr-175-178"
	RegFDA177_1520   model.RegulationID = "fda-21-cfr-177-1520"
	RegFDA176_170    model.RegulationID = "fda-21-cfr-176-170"
	RegGB9685_2016   model.RegulationID = "gb-9685-2016"
	RegGB4806_1_2016 model.RegulationID = "gb-4806-1-2016"
	RegJHOSPA        model.RegulationID = "jhospa-positive-list"
	RegJHPA          model.RegulationID = "jhpa-standards"
)

const categoryFood = "Food Contact"

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// ReferenceRegulations returns the regulations the catalog starts with.
func ReferenceRegulations() []*model.Regulation {
	return []*model.Regulation{
		{
			ID: RegEU10_2011, Name: "Regulation (EU) 10/2011", Country: "European Union", Region: "Europe",
			Description: "Plastic materials and articles intended to come into contact with food.\n\n" +
				"Establishes specific requirements for the manufacture and marketing of plastic materials and articles " +
				"which are intended to come into contact with food.",
			Link:          "https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:02011R0010-20200923",
			Categories:    []string{categoryFood, "General"},
			Featured:      true,
			LastUpdated:   day("2023-12-15"),
			UpdateDetails: "Updated migration limits for several substances including Bisphenol A.",
		},
		{
			ID: RegEC1935_2004, Name: "Regulation (EC) 1935/2004", Country: "European Union", Region: "Europe",
			Description:   "Materials and articles intended to come into contact with food.",
			Categories:    []string{categoryFood},
			LastUpdated:   day("2022-10-05"),
			UpdateDetails: "Added new requirements for labeling and traceability.",
		},
		{
			ID: RegEC2023_2006, Name: "Regulation (EC) 2023/2006", Country: "European Union", Region: "Europe",
			Description: "Good manufacturing practice for materials and articles intended to come into contact with food.",
			Categories:  []string{categoryFood},
		},
		{
			ID: RegFDA175_178, Name: "FDA 21 CFR 175-178", Country: "United States", Region: "North America",
			Description: "Indirect Food Additives.\n\n" +
				"Parts 175, 176, 177 and 178 cover adhesives and components of coatings, paper and paperboard " +
				"components, polymers, and adjuvants and production aids.",
			Link:          "https://www.ecfr.gov/current/title-21/chapter-I/subchapter-B/part-175",
			Categories:    []string{categoryFood, "Electronic Equipment"},
			Featured:      true,
			LastUpdated:   day("2023-08-22"),
			UpdateDetails: "Revised restrictions on PFAS compounds in food packaging.",
		},
		{
			ID: RegFDA177_1520, Name: "FDA 21 CFR 177.1520", Country: "United States", Region: "North America",
			Description: "Olefin polymers.",
			Categories:  []string{categoryFood},
		},
		{
			ID: RegFDA176_170, Name: "FDA 21 CFR 176.170", Country: "United States", Region: "North America",
			Description: "Components of paper and paperboard in contact with aqueous and fatty foods.",
			Categories:  []string{categoryFood},
		},
		{
			ID: RegGB9685_2016, Name: "GB 9685-2016", Country: "China", Region: "Asia",
			Description:   "Standard for the use of additives in food contact materials and products.",
			Link:          "https://www.chinesestandard.net/PDF/English.aspx/GB9685-2016",
			Categories:    []string{categoryFood, "Drinking Water"},
			Featured:      true,
			LastUpdated:   day("2023-11-30"),
			UpdateDetails: "Added 15 new substances to the positive list and revised restrictions for 8 existing substances.",
		},
		{
			ID: RegGB4806_1_2016, Name: "GB 4806.1-2016", Country: "China", Region: "Asia",
			Description: "General safety requirements for food contact materials and articles.",
			Categories:  []string{categoryFood},
		},
		{
			ID: RegJHOSPA, Name: "JHOSPA Positive List", Country: "Japan", Region: "Asia",
			Description:   "Japan Hygienic Olefin and Styrene Plastics Association Positive List.",
			Categories:    []string{categoryFood},
			Featured:      true,
			LastUpdated:   day("2023-10-12"),
			UpdateDetails: "Updated testing methods and added new substances to the positive list.",
		},
		{
			ID: RegJHPA, Name: "JHPA Standards", Country: "Japan", Region: "Asia",
			Description: "Japan Hygienic PVC Association Standards.",
			Categories:  []string{categoryFood},
		},
	}
}

// ReferenceChemicals returns the chemicals the catalog starts with.
func ReferenceChemicals() []*model.Chemical {
	return []*model.Chemical{
		{
			Name: "Bisphenol A", CASNumber: "80-05-7", Status: model.StatusRestricted, RiskLevel: model.RiskHigh,
			Limits: []model.RegulationLimit{
				{RegulationID: RegEU10_2011, SML: 0.05},
				{RegulationID: RegFDA175_178, SML: 0.05},
				{RegulationID: RegGB9685_2016, SML: 0.06},
			},
		},
		{
			Name: "Titanium Dioxide", CASNumber: "13463-67-7", Status: model.StatusAllowed, RiskLevel: model.RiskLow,
			Limits: []model.RegulationLimit{
				{RegulationID: RegEU10_2011, SML: 60},
				{RegulationID: RegGB9685_2016, SML: 50},
			},
		},
		{
			Name: "Diethylhexyl Phthalate", CASNumber: "117-81-7", Status: model.StatusProhibited, RiskLevel: model.RiskHigh,
			Limits: []model.RegulationLimit{
				{RegulationID: RegEU10_2011, SML: 1.5},
				{RegulationID: RegGB9685_2016, SML: 1.2},
			},
		},
		{
			Name: "Polyethylene Terephthalate", CASNumber: "25038-59-9", Status: model.StatusAllowed, RiskLevel: model.RiskLow,
			Limits: []model.RegulationLimit{
				{RegulationID: RegEU10_2011, SML: 3},
				{RegulationID: RegGB9685_2016, SML: 3},
			},
		},
		{
			Name: "Formaldehyde", CASNumber: "50-00-0", Status: model.StatusRestricted, RiskLevel: model.RiskMedium,
			Limits: []model.RegulationLimit{
				{RegulationID: RegEU10_2011, SML: 15},
				{RegulationID: RegFDA175_178, SML: 15},
				{RegulationID: RegGB9685_2016, SML: 15},
			},
		},
		{
			Name: "PFOA", CASNumber: "335-67-1", Status: model.StatusProhibited, RiskLevel: model.RiskHigh,
			Limits: []model.RegulationLimit{{RegulationID: RegFDA175_178, SML: 0.0001}},
		},
		{
			Name: "Zinc Oxide", CASNumber: "1314-13-2", Status: model.StatusAllowed, RiskLevel: model.RiskLow,
			Limits: []model.RegulationLimit{{RegulationID: RegGB9685_2016, SML: 25}},
		},
	}
}

// SeedReferenceData inserts the reference regulations and chemicals. Entries that already
// exist are skipped, so it is safe to run on every start.
func SeedReferenceData(
	ctx context.Context,
	chemicals repository.ChemicalsRepositoryInterface,
	regulations repository.RegulationsRepositoryInterface,
) error {
	regs := ReferenceRegulations()
	if err := regulations.CreateMany(ctx, regs); err != nil {
		return fmt.Errorf("failed to seed regulations: %w", err)
	}

	chems := ReferenceChemicals()
	for _, c := range chems {
		c.CreatedBy = "seed"
		c.UpdatedBy = "seed"
	}
	if err := chemicals.CreateMany(ctx, chems); err != nil {
		return fmt.Errorf("failed to seed chemicals: %w", err)
	}

	log.Info().
		Int("regulations", len(regs)).
		Int("chemicals", len(chems)).
		Msg("Reference data seeded")
	return nil
}

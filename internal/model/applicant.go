package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Praneeth9346/CreditRisk/internal/common"
)

// Feature names, in training order.
const (
	FeatureIncome          = "Income"
	FeatureAge             = "Age"
	FeatureExperience      = "Experience"
	FeatureMarried         = "Married"
	FeatureHouseOwnership  = "House_Ownership"
	FeatureCarOwnership    = "Car_Ownership"
	FeatureProfession      = "Profession"
	FeatureCurrentJobYears = "Current_Job_Years"
	FeatureHouseYears      = "House_Years"

	// LabelColumn is the name of the target column in exported datasets.
	LabelColumn = "Risk_Flag"
)

// HouseOwnership is the encoded housing situation of an applicant.
type HouseOwnership int

// House ownership codes.
const (
	HouseRent     HouseOwnership = 0
	HouseOwn      HouseOwnership = 1
	HouseMortgage HouseOwnership = 2
)

func (h HouseOwnership) String() string {
	switch h {
	case HouseRent:
		return "rent"
	case HouseOwn:
		return "own"
	case HouseMortgage:
		return "mortgage"
	default:
		return fmt.Sprintf("house_ownership(%d)", int(h))
	}
}

// Valid reports whether h is a known code.
func (h HouseOwnership) Valid() bool {
	return h >= HouseRent && h <= HouseMortgage
}

// ParseHouseOwnership accepts a name (rent, own, mortgage) or its numeric code.
func ParseHouseOwnership(s string) (HouseOwnership, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "rent":
		return HouseRent, nil
	case "own":
		return HouseOwn, nil
	case "mortgage":
		return HouseMortgage, nil
	}

	code, err := strconv.Atoi(s)
	if err == nil && HouseOwnership(code).Valid() {
		return HouseOwnership(code), nil
	}
	return 0, fmt.Errorf("%w: unknown house ownership %q", common.ErrInvalidApplicant, s)
}

// Applicant is a single loan applicant record.
type Applicant struct {
	Income          int
	Age             int
	Experience      int
	Profession      int
	CurrentJobYears int
	HouseYears      int
	HouseOwnership  HouseOwnership
	Married         bool
	CarOwnership    bool
}

// Validate checks that every field is within its encoding domain.
func (a *Applicant) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil applicant", common.ErrInvalidApplicant)
	}
	if !a.HouseOwnership.Valid() {
		return fmt.Errorf("%w: house ownership %d", common.ErrInvalidApplicant, int(a.HouseOwnership))
	}

	nonNegative := []struct {
		name  string
		value int
	}{
		{FeatureIncome, a.Income},
		{FeatureAge, a.Age},
		{FeatureExperience, a.Experience},
		{FeatureProfession, a.Profession},
		{FeatureCurrentJobYears, a.CurrentJobYears},
		{FeatureHouseYears, a.HouseYears},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", common.ErrInvalidApplicant, f.name, f.value)
		}
	}
	return nil
}

// Feature returns the encoded value of the named feature.
func (a *Applicant) Feature(name string) (float64, bool) {
	switch name {
	case FeatureIncome:
		return float64(a.Income), true
	case FeatureAge:
		return float64(a.Age), true
	case FeatureExperience:
		return float64(a.Experience), true
	case FeatureMarried:
		return boolFeature(a.Married), true
	case FeatureHouseOwnership:
		return float64(a.HouseOwnership), true
	case FeatureCarOwnership:
		return boolFeature(a.CarOwnership), true
	case FeatureProfession:
		return float64(a.Profession), true
	case FeatureCurrentJobYears:
		return float64(a.CurrentJobYears), true
	case FeatureHouseYears:
		return float64(a.HouseYears), true
	default:
		return 0, false
	}
}

// Vector encodes the applicant in the order of schema. Every schema
// feature must be known to Applicant.
func (a *Applicant) Vector(schema Schema) ([]float64, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: empty schema", common.ErrSchemaMismatch)
	}
	out := make([]float64, len(schema))
	for i, name := range schema {
		v, ok := a.Feature(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q at position %d", common.ErrSchemaMismatch, name, i)
		}
		out[i] = v
	}
	return out, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

package model

import (
	"fmt"

	"github.com/Praneeth9346/CreditRisk/internal/common"
)

// Schema is the ordered list of feature names a classifier was trained on.
type Schema []string

// DefaultSchema returns the applicant feature order used for training.
func DefaultSchema() Schema {
	return Schema{
		FeatureIncome,
		FeatureAge,
		FeatureExperience,
		FeatureMarried,
		FeatureHouseOwnership,
		FeatureCarOwnership,
		FeatureProfession,
		FeatureCurrentJobYears,
		FeatureHouseYears,
	}
}

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	return -1
}

// Equal reports whether both schemas name the same features in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks that names matches the schema exactly, including order.
func (s Schema) Validate(names []string) error {
	if len(names) != len(s) {
		return fmt.Errorf("%w: expected %d features, got %d", common.ErrSchemaMismatch, len(s), len(names))
	}
	for i, name := range names {
		if name == s[i] {
			continue
		}
		if s.Index(name) >= 0 {
			return fmt.Errorf("%w: feature %q at position %d, expected %q", common.ErrSchemaMismatch, name, i, s[i])
		}
		return fmt.Errorf("%w: unknown feature %q", common.ErrSchemaMismatch, name)
	}
	return nil
}

// Clone returns a copy that does not share storage with s.
func (s Schema) Clone() Schema {
	return append(Schema(nil), s...)
}

package engine

import (
	"fmt"
	"math"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/explain"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/Praneeth9346/CreditRisk/internal/service"
)

// Scorer turns applicants into explained decisions. It is read-only after
// construction and safe for concurrent use.
type Scorer struct {
	classifier *boost.Ensemble
	explainer  *explain.Explainer
	profile    *explain.Profile
	run        *service.TrainingRun
}

// NewScorer prepares a scorer from a stored artifact pair.
func NewScorer(artifacts *service.Artifacts) (*Scorer, error) {
	if artifacts == nil || artifacts.Classifier == nil || artifacts.Baseline == nil {
		return nil, fmt.Errorf("%w: incomplete artifacts", common.ErrArtifactCorrupt)
	}

	explainer, err := explain.NewExplainer(artifacts.Classifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArtifactCorrupt, err)
	}
	profile, err := explain.NewBaselineProfile(artifacts.Classifier.Schema, artifacts.Baseline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArtifactCorrupt, err)
	}

	return &Scorer{
		classifier: artifacts.Classifier,
		explainer:  explainer,
		profile:    profile,
		run:        artifacts.Run,
	}, nil
}

// Schema returns the feature order the classifier was trained with.
func (s *Scorer) Schema() model.Schema {
	return s.classifier.Schema.Clone()
}

// Run returns the training run metadata, if recorded.
func (s *Scorer) Run() *service.TrainingRun {
	return s.run
}

// Profile returns the training baseline summary.
func (s *Scorer) Profile() *explain.Profile {
	return s.profile
}

// Score validates and scores one applicant.
func (s *Scorer) Score(a *model.Applicant) (*model.Decision, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	x, err := a.Vector(s.classifier.Schema)
	if err != nil {
		return nil, err
	}
	return s.decide(x)
}

// ScoreVector scores a raw feature vector whose names must match the
// training schema exactly, in order. Every value must be finite.
func (s *Scorer) ScoreVector(names []string, values []float64) (*model.Decision, error) {
	if err := s.classifier.Schema.Validate(names); err != nil {
		return nil, err
	}
	if len(values) != len(names) {
		return nil, fmt.Errorf("%w: %d names but %d values", common.ErrSchemaMismatch, len(names), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s is %g", common.ErrInvalidApplicant, names[i], v)
		}
	}
	return s.decide(values)
}

func (s *Scorer) decide(x []float64) (*model.Decision, error) {
	exp, err := s.explainer.Explain(x)
	if err != nil {
		return nil, err
	}
	placement, err := s.profile.Context(x)
	if err != nil {
		return nil, err
	}

	p := boost.Sigmoid(exp.Margin)
	return &model.Decision{
		Reject:        p > model.RejectThreshold,
		Probability:   p,
		Margin:        exp.Margin,
		ExpectedValue: exp.ExpectedValue,
		Attributions:  exp.Attributions(),
		Context:       placement,
	}, nil
}

package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/service"
	"gonum.org/v1/gonum/mat"
)

const codecVersion = 1

// classifierEnvelope is the stored form of a classifier. It names the
// baseline it was trained with by digest so a mismatched pair is detected.
type classifierEnvelope struct {
	Classifier     *boost.Ensemble      `json:"classifier"`
	Run            *service.TrainingRun `json:"run,omitempty"`
	BaselineDigest string               `json:"baseline_digest"`
	Version        int                  `json:"version"`
}

type encoded struct {
	classifier []byte
	baseline   []byte
	digest     string
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func encodeArtifacts(a *service.Artifacts) (*encoded, error) {
	baseline, err := a.Baseline.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode baseline: %w", err)
	}
	sum := digest(baseline)

	classifier, err := json.Marshal(classifierEnvelope{
		Version:        codecVersion,
		Classifier:     a.Classifier,
		Run:            a.Run,
		BaselineDigest: sum,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classifier: %w", err)
	}

	return &encoded{classifier: classifier, baseline: baseline, digest: sum}, nil
}

func decodeArtifacts(classifier, baseline []byte) (*service.Artifacts, error) {
	var env classifierEnvelope
	if err := json.Unmarshal(classifier, &env); err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", common.ErrArtifactCorrupt, err)
	}
	if env.Version != codecVersion {
		return nil, fmt.Errorf("%w: unsupported classifier version %d", common.ErrArtifactCorrupt, env.Version)
	}
	if env.Classifier == nil {
		return nil, fmt.Errorf("%w: classifier is empty", common.ErrArtifactCorrupt)
	}
	if err := env.Classifier.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArtifactCorrupt, err)
	}
	if digest(baseline) != env.BaselineDigest {
		return nil, fmt.Errorf("%w: baseline does not belong to the stored classifier", common.ErrArtifactCorrupt)
	}

	var m mat.Dense
	if err := m.UnmarshalBinary(baseline); err != nil {
		return nil, fmt.Errorf("%w: baseline: %w", common.ErrArtifactCorrupt, err)
	}
	if _, cols := m.Dims(); cols != len(env.Classifier.Schema) {
		return nil, fmt.Errorf("%w: baseline has %d columns for %d features", common.ErrArtifactCorrupt, cols, len(env.Classifier.Schema))
	}

	return &service.Artifacts{Classifier: env.Classifier, Baseline: &m, Run: env.Run}, nil
}

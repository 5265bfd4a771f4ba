package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrArtifactNotFound is returned when the model file does not exist.
	ErrArtifactNotFound = errors.New("model artifact not found")
	// ErrIncompatibleArtifact is returned for artifacts this package cannot evaluate.
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")
	// ErrSchemaMismatch is returned when feature columns disagree with the model.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)

// Supported objectives; both produce probabilities through the logistic link.
const (
	ObjectiveBinaryLogistic = "binary:logistic"
	ObjectiveRegLogistic    = "reg:logistic"
)

type node struct {
	isLeaf    bool
	feature   int
	threshold float32
	yes       int
	no        int
	missing   int
	leaf      float64
	cover     float64
}

// next returns the child taken for value x. Comparison is done in float32
// to match how the trees were grown.
func (n *node) next(x float64) int {
	if math.IsNaN(x) {
		return n.missing
	}
	if float32(x) < n.threshold {
		return n.yes
	}
	return n.no
}

type tree struct {
	nodes []node
	depth int
}

func (t *tree) predict(row []float64) float64 {
	i := 0
	for !t.nodes[i].isLeaf {
		n := &t.nodes[i]
		i = n.next(row[n.feature])
	}
	return t.nodes[i].leaf
}

// Ensemble is a loaded gradient-boosted tree model. It is immutable after
// load and safe for concurrent use.
type Ensemble struct {
	version      string
	objective    string
	baseScore    float64
	featureNames []string
	trees        []tree
	maxDepth     int
}

// Version returns the artifact version label, if any.
func (e *Ensemble) Version() string { return e.version }

// Objective returns the training objective.
func (e *Ensemble) Objective() string { return e.objective }

// NumTrees returns the number of boosting rounds.
func (e *Ensemble) NumTrees() int { return len(e.trees) }

// NumFeatures returns the expected input width.
func (e *Ensemble) NumFeatures() int { return len(e.featureNames) }

// FeatureNames returns the column order the model was trained with.
func (e *Ensemble) FeatureNames() []string {
	out := make([]string, len(e.featureNames))
	copy(out, e.featureNames)
	return out
}

// CheckSchema verifies columns match the trained column order exactly.
func (e *Ensemble) CheckSchema(columns []string) error {
	if len(columns) != len(e.featureNames) {
		return fmt.Errorf("%w: model has %d features, caller supplies %d",
			ErrSchemaMismatch, len(e.featureNames), len(columns))
	}
	for i, name := range columns {
		if e.featureNames[i] != name {
			return fmt.Errorf("%w: column %d is %q, model expects %q",
				ErrSchemaMismatch, i, name, e.featureNames[i])
		}
	}
	return nil
}

// BaseMargin is the log-odds every prediction starts from.
func (e *Ensemble) BaseMargin() float64 {
	return logit(e.baseScore)
}

// Margin returns the raw log-odds output for one row.
func (e *Ensemble) Margin(row []float64) (float64, error) {
	if len(row) != len(e.featureNames) {
		return 0, fmt.Errorf("%w: row has %d values, model expects %d",
			ErrSchemaMismatch, len(row), len(e.featureNames))
	}
	sum := e.BaseMargin()
	for i := range e.trees {
		sum += e.trees[i].predict(row)
	}
	return sum, nil
}

// PredictOne returns the fraud probability for one row.
func (e *Ensemble) PredictOne(row []float64) (float64, error) {
	m, err := e.Margin(row)
	if err != nil {
		return 0, err
	}
	return sigmoid(m), nil
}

// Predict returns one probability per row, in row order.
func (e *Ensemble) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		p, err := e.PredictOne(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

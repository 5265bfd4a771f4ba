package model

import "fmt"

// Attribution holds per-feature contributions in log-odds space.
// BaseValue plus the sum of Values equals the model margin for the row.
type Attribution struct {
	Values    []float64
	BaseValue float64
}

// TreeExplainer computes exact path-dependent TreeSHAP values using the
// node covers recorded in the artifact.
type TreeExplainer struct {
	ensemble *Ensemble
	means    []float64
	base     float64
}

// NewTreeExplainer prepares an explainer for e. columns must match the
// model's feature order, and every node must carry a cover statistic.
func NewTreeExplainer(e *Ensemble, columns []string) (*TreeExplainer, error) {
	if err := e.CheckSchema(columns); err != nil {
		return nil, err
	}
	x := &TreeExplainer{ensemble: e, base: e.BaseMargin()}
	for i := range e.trees {
		t := &e.trees[i]
		for id, n := range t.nodes {
			if !n.isLeaf && n.cover <= 0 {
				return nil, fmt.Errorf("%w: tree %d node %d has no cover statistic",
					ErrIncompatibleArtifact, i, id)
			}
		}
		m := t.meanValue(0)
		x.means = append(x.means, m)
		x.base += m
	}
	return x, nil
}

// BaseValue is the expected margin over the training distribution.
func (x *TreeExplainer) BaseValue() float64 { return x.base }

// Explain returns the attribution for a single row.
func (x *TreeExplainer) Explain(row []float64) (*Attribution, error) {
	e := x.ensemble
	if len(row) != e.NumFeatures() {
		return nil, fmt.Errorf("%w: row has %d values, explainer expects %d",
			ErrSchemaMismatch, len(row), e.NumFeatures())
	}

	phi := make([]float64, len(row))
	size := (e.maxDepth + 2) * (e.maxDepth + 3) / 2
	buf := make([]pathElement, size)
	for i := range e.trees {
		for j := range buf {
			buf[j] = pathElement{}
		}
		e.trees[i].shap(row, phi, 0, 0, buf, 1, 1, -1)
	}
	return &Attribution{Values: phi, BaseValue: x.base}, nil
}

// meanValue is the cover-weighted expected leaf value below node i.
func (t *tree) meanValue(i int) float64 {
	n := &t.nodes[i]
	if n.isLeaf {
		return n.leaf
	}
	yes, no := &t.nodes[n.yes], &t.nodes[n.no]
	return (yes.cover*t.meanValue(n.yes) + no.cover*t.meanValue(n.no)) / n.cover
}

type pathElement struct {
	feature      int
	zeroFraction float64
	oneFraction  float64
	weight       float64
}

func (t *tree) shap(row, phi []float64, i, depth int, parent []pathElement,
	zeroFraction, oneFraction float64, feature int) {
	path := parent[depth+1:]
	copy(path[:depth+1], parent[:depth+1])
	extendPath(path, depth, zeroFraction, oneFraction, feature)

	n := &t.nodes[i]
	if n.isLeaf {
		for k := 1; k <= depth; k++ {
			w := unwoundPathSum(path, depth, k)
			el := path[k]
			phi[el.feature] += w * (el.oneFraction - el.zeroFraction) * n.leaf
		}
		return
	}

	hot := n.next(row[n.feature])
	cold := n.yes
	if hot == n.yes {
		cold = n.no
	}
	hotZero := t.nodes[hot].cover / n.cover
	coldZero := t.nodes[cold].cover / n.cover

	// A feature already on the path is folded back in rather than duplicated.
	incomingZero, incomingOne := 1.0, 1.0
	k := 0
	for ; k <= depth; k++ {
		if path[k].feature == n.feature {
			break
		}
	}
	if k <= depth {
		incomingZero = path[k].zeroFraction
		incomingOne = path[k].oneFraction
		unwindPath(path, depth, k)
		depth--
	}

	t.shap(row, phi, hot, depth+1, path, hotZero*incomingZero, incomingOne, n.feature)
	t.shap(row, phi, cold, depth+1, path, coldZero*incomingZero, 0, n.feature)
}

func extendPath(path []pathElement, depth int, zeroFraction, oneFraction float64, feature int) {
	path[depth] = pathElement{feature: feature, zeroFraction: zeroFraction, oneFraction: oneFraction}
	if depth == 0 {
		path[depth].weight = 1
	}
	d := float64(depth + 1)
	for i := depth - 1; i >= 0; i-- {
		path[i+1].weight += oneFraction * path[i].weight * float64(i+1) / d
		path[i].weight = zeroFraction * path[i].weight * float64(depth-i) / d
	}
}

func unwindPath(path []pathElement, depth, k int) {
	one, zero := path[k].oneFraction, path[k].zeroFraction
	d := float64(depth + 1)
	next := path[depth].weight
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := path[i].weight
			path[i].weight = next * d / (float64(i+1) * one)
			next = tmp - path[i].weight*zero*float64(depth-i)/d
		} else {
			path[i].weight = path[i].weight * d / (zero * float64(depth-i))
		}
	}
	for i := k; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zeroFraction = path[i+1].zeroFraction
		path[i].oneFraction = path[i+1].oneFraction
	}
}

func unwoundPathSum(path []pathElement, depth, k int) float64 {
	one, zero := path[k].oneFraction, path[k].zeroFraction
	d := float64(depth + 1)
	next := path[depth].weight
	total := 0.0
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := next * d / (float64(i+1) * one)
			total += tmp
			next = path[i].weight - tmp*zero*float64(depth-i)/d
		} else if zero != 0 {
			total += path[i].weight / zero * d / float64(depth-i)
		}
	}
	return total
}

package model

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"
)

// ArtifactFormat is the envelope format accepted by Parse.
const ArtifactFormat = "xgboost-json-dump"

// LoadFile reads a model artifact from disk. Paths ending in .gz are
// decompressed first.
func LoadFile(path string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("opening model artifact: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIncompatibleArtifact, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes an artifact envelope holding an XGBoost JSON tree dump
// (dump_model with_stats=True) plus objective, base_score and feature_names.
func Parse(data []byte) (*Ensemble, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleArtifact, err)
	}

	if format := string(v.GetStringBytes("format")); format != "" && format != ArtifactFormat {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrIncompatibleArtifact, format)
	}

	e := &Ensemble{
		version:   string(v.GetStringBytes("version")),
		objective: string(v.GetStringBytes("objective")),
		baseScore: 0.5,
	}
	switch e.objective {
	case ObjectiveBinaryLogistic, ObjectiveRegLogistic:
	default:
		return nil, fmt.Errorf("%w: unsupported objective %q", ErrIncompatibleArtifact, e.objective)
	}
	if v.Exists("base_score") {
		e.baseScore = v.GetFloat64("base_score")
	}
	if e.baseScore <= 0 || e.baseScore >= 1 {
		return nil, fmt.Errorf("%w: base_score %v outside (0,1)", ErrIncompatibleArtifact, e.baseScore)
	}

	names := v.GetArray("feature_names")
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: feature_names missing", ErrIncompatibleArtifact)
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		name, err := n.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("%w: feature_names[%d]: %v", ErrIncompatibleArtifact, i, err)
		}
		e.featureNames = append(e.featureNames, string(name))
		index[string(name)] = i
	}

	trees := v.GetArray("trees")
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrIncompatibleArtifact)
	}
	for i, tv := range trees {
		t, err := parseTree(tv, index)
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrIncompatibleArtifact, i, err)
		}
		e.trees = append(e.trees, t)
		if t.depth > e.maxDepth {
			e.maxDepth = t.depth
		}
	}
	return e, nil
}

func parseTree(root *fastjson.Value, index map[string]int) (tree, error) {
	nodes := make(map[int]node)
	depth, err := collectNodes(root, index, nodes, 0)
	if err != nil {
		return tree{}, err
	}

	t := tree{nodes: make([]node, len(nodes)), depth: depth}
	for id, n := range nodes {
		if id < 0 || id >= len(nodes) {
			return tree{}, fmt.Errorf("node ids are not contiguous (found %d of %d)", id, len(nodes))
		}
		t.nodes[id] = n
	}
	for id, n := range t.nodes {
		if n.isLeaf {
			continue
		}
		for _, child := range []int{n.yes, n.no, n.missing} {
			if child <= 0 || child >= len(t.nodes) {
				return tree{}, fmt.Errorf("node %d references missing child %d", id, child)
			}
		}
		if n.missing != n.yes && n.missing != n.no {
			return tree{}, fmt.Errorf("node %d missing branch %d is neither child", id, n.missing)
		}
	}
	return t, nil
}

func collectNodes(v *fastjson.Value, index map[string]int, out map[int]node, depth int) (int, error) {
	if !v.Exists("nodeid") {
		return 0, fmt.Errorf("node without nodeid")
	}
	id := v.GetInt("nodeid")
	if _, dup := out[id]; dup {
		return 0, fmt.Errorf("duplicate node id %d", id)
	}

	n := node{cover: v.GetFloat64("cover")}
	if v.Exists("leaf") {
		n.isLeaf = true
		n.leaf = v.GetFloat64("leaf")
		out[id] = n
		return depth, nil
	}

	feature, err := resolveFeature(string(v.GetStringBytes("split")), index)
	if err != nil {
		return 0, fmt.Errorf("node %d: %w", id, err)
	}
	n.feature = feature
	n.threshold = float32(v.GetFloat64("split_condition"))
	n.yes = v.GetInt("yes")
	n.no = v.GetInt("no")
	n.missing = n.yes
	if v.Exists("missing") {
		n.missing = v.GetInt("missing")
	}
	out[id] = n

	children := v.GetArray("children")
	if len(children) != 2 {
		return 0, fmt.Errorf("node %d has %d children", id, len(children))
	}
	// yes/no must name the nested children, so every walk moves strictly down.
	left, right := children[0].GetInt("nodeid"), children[1].GetInt("nodeid")
	if n.yes == n.no || !((n.yes == left && n.no == right) || (n.yes == right && n.no == left)) {
		return 0, fmt.Errorf("node %d branches yes=%d no=%d do not match children %d, %d",
			id, n.yes, n.no, left, right)
	}
	maxDepth := depth
	for _, c := range children {
		d, err := collectNodes(c, index, out, depth+1)
		if err != nil {
			return 0, err
		}
		if d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth, nil
}

// resolveFeature accepts either a feature name or the positional "f<N>" form.
func resolveFeature(split string, index map[string]int) (int, error) {
	if i, ok := index[split]; ok {
		return i, nil
	}
	if strings.HasPrefix(split, "f") {
		if i, err := strconv.Atoi(split[1:]); err == nil && i >= 0 && i < len(index) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("split on unknown feature %q", split)
}

// Package iforest implements an isolation forest for unsupervised
// multivariate outlier scoring. A Forest is fit once over a feature
// matrix and discarded with the detection run; it holds no state shared
// across runs.
package iforest

import (
	"errors"
	"math"
	"math/rand"
)

// Forest is an ensemble of isolation trees. Points that isolate in fewer
// splits than the bulk of the data score closer to 1.
type Forest struct {
	nTrees        int
	sampleSize    int
	contamination float64
	maxDepth      int
	rng           *rand.Rand

	trees     []*node
	threshold float64
	avgPath   float64
	fitted    bool
}

// node is a split or leaf in an isolation tree.
type node struct {
	splitFeature int
	splitValue   float64
	left         *node
	right        *node
	size         int
}

// Option configures a Forest.
type Option func(*Forest)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(f *Forest) { f.nTrees = n }
}

// WithSampleSize sets the subsample size per tree.
func WithSampleSize(n int) Option {
	return func(f *Forest) { f.sampleSize = n }
}

// WithContamination sets the expected fraction of outliers, which places
// the score threshold at the matching percentile after fitting.
func WithContamination(c float64) Option {
	return func(f *Forest) { f.contamination = c }
}

// WithSeed fixes the random source so repeated fits over the same matrix
// produce identical scores.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.rng = rand.New(rand.NewSource(seed)) }
}

// New creates a Forest with the given options.
func New(opts ...Option) *Forest {
	f := &Forest{
		nTrees:        100,
		sampleSize:    256,
		contamination: 0.1,
		rng:           rand.New(rand.NewSource(42)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.maxDepth = int(math.Ceil(math.Log2(float64(f.sampleSize))))
	return f
}

// Fit builds the ensemble over the feature matrix and derives the score
// threshold from the contamination fraction.
func (f *Forest) Fit(data [][]float64) error {
	if len(data) == 0 {
		return errors.New("empty feature matrix")
	}
	nFeatures := len(data[0])
	if nFeatures == 0 {
		return errors.New("feature matrix has no columns")
	}
	for _, row := range data {
		if len(row) != nFeatures {
			return errors.New("ragged feature matrix")
		}
	}

	nSamples := len(data)
	sampleSize := f.sampleSize
	if sampleSize > nSamples {
		sampleSize = nSamples
	}

	f.trees = make([]*node, f.nTrees)
	for i := 0; i < f.nTrees; i++ {
		indices := f.rng.Perm(nSamples)[:sampleSize]
		sample := make([][]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = data[idx]
		}
		f.trees[i] = f.buildNode(sample, nFeatures, 0)
	}

	f.avgPath = averagePathLength(float64(sampleSize))
	f.fitted = true

	scores := f.scores(data)
	f.threshold = percentile(scores, 1-f.contamination)
	return nil
}

func (f *Forest) buildNode(data [][]float64, nFeatures, depth int) *node {
	n := len(data)
	if depth >= f.maxDepth || n <= 1 {
		return &node{size: n}
	}

	feature := f.rng.Intn(nFeatures)
	minVal, maxVal := data[0][feature], data[0][feature]
	for _, row := range data[1:] {
		if row[feature] < minVal {
			minVal = row[feature]
		}
		if row[feature] > maxVal {
			maxVal = row[feature]
		}
	}
	if minVal == maxVal {
		return &node{size: n}
	}

	splitValue := minVal + f.rng.Float64()*(maxVal-minVal)
	var left, right [][]float64
	for _, row := range data {
		if row[feature] < splitValue {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &node{
		splitFeature: feature,
		splitValue:   splitValue,
		left:         f.buildNode(left, nFeatures, depth+1),
		right:        f.buildNode(right, nFeatures, depth+1),
	}
}

// Scores returns the isolation score in (0, 1) for every row; higher
// means more anomalous.
func (f *Forest) Scores(data [][]float64) ([]float64, error) {
	if !f.fitted {
		return nil, errors.New("model not fitted")
	}
	return f.scores(data), nil
}

// DecisionScores returns threshold − score for every row. Negative values
// are outliers; the magnitude measures how far past the threshold the
// point sits.
func (f *Forest) DecisionScores(data [][]float64) ([]float64, error) {
	scores, err := f.Scores(data)
	if err != nil {
		return nil, err
	}
	decisions := make([]float64, len(scores))
	for i, s := range scores {
		decisions[i] = f.threshold - s
	}
	return decisions, nil
}

// Threshold returns the score threshold derived from contamination.
func (f *Forest) Threshold() float64 { return f.threshold }

func (f *Forest) scores(data [][]float64) []float64 {
	scores := make([]float64, len(data))
	for i, sample := range data {
		scores[i] = f.scoreOne(sample)
	}
	return scores
}

func (f *Forest) scoreOne(sample []float64) float64 {
	var totalPath float64
	for _, tree := range f.trees {
		totalPath += pathLength(sample, tree, 0)
	}
	avg := totalPath / float64(len(f.trees))
	return math.Pow(2, -avg/f.avgPath)
}

func pathLength(sample []float64, n *node, depth int) float64 {
	if n.left == nil && n.right == nil {
		return float64(depth) + averagePathLength(float64(n.size))
	}
	if sample[n.splitFeature] < n.splitValue {
		return pathLength(sample, n.left, depth+1)
	}
	return pathLength(sample, n.right, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// BST search, using the harmonic-number approximation.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}

// percentile returns the p-th (0..1) percentile by nearest sorted index.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

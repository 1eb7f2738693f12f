package domain

import (
	"math"
	"sort"
)

// Label is an opaque identifier naming one category/term from a controlled
// vocabulary, for example "GO:0006915".
type Label string

// ScoreMap maps a label to a real-valued importance score. Higher is better.
// Scores are not normalized; they are only compared within one resolution.
type ScoreMap map[Label]float64

// ClusterID identifies one cluster in a partition. IDs are assigned 1..k in
// order of each cluster's lexically smallest member, so they are stable across
// runs and independent of input ordering.
type ClusterID int

// SymmetryTolerance is the maximum absolute difference allowed between
// sim(a,b) and sim(b,a), and between a diagonal entry and 1.0.
const SymmetryTolerance = 1e-9

// SimilarityMatrix is a square, symmetric matrix of pairwise similarities in
// [0,1], rows and columns indexed by label. Labels are kept sorted so that
// every derived computation is independent of construction order.
type SimilarityMatrix struct {
	labels []Label
	index  map[Label]int
	data   [][]float64
}

// NewSimilarityMatrix builds a matrix from nested map entries. Every label
// must carry a full row covering every other label; a missing pair is a
// DimensionMismatchError, not a silent zero.
func NewSimilarityMatrix(entries map[Label]map[Label]float64) (*SimilarityMatrix, error) {
	labels := make([]Label, 0, len(entries))
	for l := range entries {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	n := len(labels)
	data := make([][]float64, n)
	for i, a := range labels {
		row := make([]float64, n)
		for j, b := range labels {
			if a == b {
				row[j] = 1.0
				if v, ok := entries[a][b]; ok {
					row[j] = v
				}
				continue
			}
			v, ok := entries[a][b]
			if !ok {
				v, ok = entries[b][a]
			}
			if !ok {
				return nil, &DimensionMismatchError{
					Rows:   n,
					Cols:   n,
					Reason: "missing similarity for pair (" + string(a) + ", " + string(b) + ")",
				}
			}
			row[j] = v
		}
		data[i] = row
	}
	return newValidated(labels, data)
}

// NewSimilarityMatrixFromDense builds a matrix from a label slice and dense
// row-major data aligned with it. The data is copied; rows are re-sorted into
// lexical label order.
func NewSimilarityMatrixFromDense(labels []Label, data [][]float64) (*SimilarityMatrix, error) {
	n := len(labels)
	if len(data) != n {
		return nil, &DimensionMismatchError{Rows: len(data), Cols: n, Reason: "row count does not match label count"}
	}
	for i := range data {
		if len(data[i]) != n {
			return nil, &DimensionMismatchError{Rows: n, Cols: len(data[i]), Reason: "matrix is not square"}
		}
	}
	seen := make(map[Label]struct{}, n)
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return nil, &DimensionMismatchError{Rows: n, Cols: n, Reason: "duplicate label " + string(l)}
		}
		seen[l] = struct{}{}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return labels[order[i]] < labels[order[j]] })

	sortedLabels := make([]Label, n)
	sorted := make([][]float64, n)
	for i, oi := range order {
		sortedLabels[i] = labels[oi]
		row := make([]float64, n)
		for j, oj := range order {
			row[j] = data[oi][oj]
		}
		sorted[i] = row
	}
	return newValidated(sortedLabels, sorted)
}

// newValidated checks symmetry, range and diagonal on already-sorted data.
func newValidated(labels []Label, data [][]float64) (*SimilarityMatrix, error) {
	n := len(labels)
	for i := 0; i < n; i++ {
		if math.Abs(data[i][i]-1.0) > SymmetryTolerance {
			return nil, &DimensionMismatchError{
				Rows:   n,
				Cols:   n,
				Reason: "diagonal entry for " + string(labels[i]) + " is not 1.0",
			}
		}
		for j := i + 1; j < n; j++ {
			if math.Abs(data[i][j]-data[j][i]) > SymmetryTolerance {
				return nil, &DimensionMismatchError{
					Rows:   n,
					Cols:   n,
					Reason: "asymmetric pair (" + string(labels[i]) + ", " + string(labels[j]) + ")",
				}
			}
			if data[i][j] < 0 || data[i][j] > 1 {
				return nil, &DimensionMismatchError{
					Rows:   n,
					Cols:   n,
					Reason: "similarity for (" + string(labels[i]) + ", " + string(labels[j]) + ") outside [0,1]",
				}
			}
		}
	}
	index := make(map[Label]int, n)
	for i, l := range labels {
		index[l] = i
	}
	return &SimilarityMatrix{labels: labels, index: index, data: data}, nil
}

// Len returns the number of labels in the matrix.
func (m *SimilarityMatrix) Len() int { return len(m.labels) }

// Labels returns the matrix labels in lexical order. The slice is a copy.
func (m *SimilarityMatrix) Labels() []Label {
	out := make([]Label, len(m.labels))
	copy(out, m.labels)
	return out
}

// Contains reports whether the label has a row in the matrix.
func (m *SimilarityMatrix) Contains(l Label) bool {
	_, ok := m.index[l]
	return ok
}

// At returns the similarity at row i, column j in lexical label order.
func (m *SimilarityMatrix) At(i, j int) float64 { return m.data[i][j] }

// Sim returns the similarity between two labels. The second return value is
// false when either label is absent from the matrix.
func (m *SimilarityMatrix) Sim(a, b Label) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.data[i][j], true
}

// Row returns a copy of the similarity row for the label at index i.
func (m *SimilarityMatrix) Row(i int) []float64 {
	out := make([]float64, len(m.data[i]))
	copy(out, m.data[i])
	return out
}

// Submatrix returns a new matrix restricted to the given labels, with values
// copied from the receiver. Labels absent from the receiver are an error.
func (m *SimilarityMatrix) Submatrix(labels []Label) (*SimilarityMatrix, error) {
	sub := make([]Label, len(labels))
	copy(sub, labels)
	sort.Slice(sub, func(i, j int) bool { return sub[i] < sub[j] })

	data := make([][]float64, len(sub))
	for i, a := range sub {
		ai, ok := m.index[a]
		if !ok {
			return nil, &DimensionMismatchError{
				Rows:   m.Len(),
				Cols:   m.Len(),
				Reason: "label " + string(a) + " not present in matrix",
			}
		}
		row := make([]float64, len(sub))
		for j, b := range sub {
			row[j] = m.data[ai][m.index[b]]
		}
		data[i] = row
	}
	return newValidated(sub, data)
}

// Partition maps every label of a matrix to exactly one cluster.
type Partition struct {
	Assignments map[Label]ClusterID
}

// NumClusters returns the number of distinct clusters in the partition.
func (p *Partition) NumClusters() int {
	seen := make(map[ClusterID]struct{}, len(p.Assignments))
	for _, id := range p.Assignments {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// Clusters returns the members of every cluster, each sorted lexically.
func (p *Partition) Clusters() map[ClusterID][]Label {
	out := make(map[ClusterID][]Label)
	for l, id := range p.Assignments {
		out[id] = append(out[id], l)
	}
	for id := range out {
		members := out[id]
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	}
	return out
}

// AssignmentRow is the per-label output of a reduction: the cluster the label
// landed in, the representative standing for that cluster, the display term
// used for parent annotation, and the label's resolved score.
type AssignmentRow struct {
	Label          Label
	Cluster        ClusterID
	Representative Label
	ParentTerm     string
	Score          float64
}

// ReducedAssignment is the complete result of one reduction. It is created
// once per invocation and immutable afterwards.
type ReducedAssignment struct {
	// Rows holds one entry per input label, sorted by label.
	Rows []AssignmentRow
	// Representatives maps every cluster to its representative label.
	Representatives map[ClusterID]Label
	// ReducedMatrix is the similarity matrix restricted to representative
	// labels, values copied from the input matrix.
	ReducedMatrix *SimilarityMatrix
	// Threshold is the similarity threshold the dendrogram was cut at.
	Threshold float64
}

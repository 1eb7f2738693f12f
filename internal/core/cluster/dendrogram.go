// Package cluster implements agglomerative hierarchical clustering over a
// similarity matrix, parameterized by a linkage strategy, and the flat
// partitioning obtained by cutting the resulting dendrogram at a height.
//
// Distances are derived as 1 - sim and are not assumed to be metric; the
// engine only ever consults pairwise distances and the linkage merge rule.
package cluster

import (
	"sort"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/go_term_reduction/internal/pool"
)

// CutTolerance absorbs floating point noise when comparing a merge height
// against a cut height.
const CutTolerance = 1e-9

// Merge records one agglomeration step: the two clusters joined and the
// distance they were joined at.
type Merge struct {
	Height float64
	A      []domain.Label
	B      []domain.Label
}

// Dendrogram is the full merge history of one agglomeration run. Merge
// heights are non-decreasing for the monotone linkages shipped here, so a cut
// at any height corresponds to a prefix of the merge list.
type Dendrogram struct {
	labels []domain.Label
	merges []Merge
}

// rowPool recycles the working distance rows across agglomeration runs.
var rowPool = pool.NewFloat64SlicePool()

type clusterNode struct {
	key     domain.Label
	members []domain.Label
	size    int
}

// Agglomerate builds the dendrogram for the matrix under the given linkage.
// Ties in merge distance are broken by comparing the lexically smallest
// member label of each candidate cluster, so the result is deterministic and
// independent of input ordering.
func Agglomerate(m *domain.SimilarityMatrix, link ports.Linkage) *Dendrogram {
	labels := m.Labels()
	n := len(labels)
	d := &Dendrogram{labels: labels}
	if n < 2 {
		return d
	}

	// Up to 2n-1 nodes exist over the whole run: n leaves plus n-1 merges.
	total := 2*n - 1
	nodes := make([]clusterNode, 0, total)
	rows := make([]*[]float64, total)
	for i := 0; i < n; i++ {
		nodes = append(nodes, clusterNode{
			key:     labels[i],
			members: []domain.Label{labels[i]},
			size:    1,
		})
		row := rowPool.Get(total)
		for j := 0; j < n; j++ {
			(*row)[j] = 1.0 - m.At(i, j)
		}
		rows[i] = row
	}
	defer func() {
		for _, row := range rows {
			if row != nil {
				rowPool.Put(row)
			}
		}
	}()

	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	d.merges = make([]Merge, 0, n-1)
	for len(active) > 1 {
		bestA, bestB := -1, -1
		bestDist := 0.0
		for ai := 0; ai < len(active); ai++ {
			for bi := ai + 1; bi < len(active); bi++ {
				x, y := active[ai], active[bi]
				// Order the candidate pair by cluster key for tie-breaking.
				if nodes[y].key < nodes[x].key {
					x, y = y, x
				}
				dist := (*rows[x])[y]
				if bestA < 0 || dist < bestDist ||
					(dist == bestDist && lessPair(nodes[x].key, nodes[y].key, nodes[bestA].key, nodes[bestB].key)) {
					bestA, bestB = x, y
					bestDist = dist
				}
			}
		}

		a, b := &nodes[bestA], &nodes[bestB]
		d.merges = append(d.merges, Merge{
			Height: bestDist,
			A:      a.members,
			B:      b.members,
		})

		merged := clusterNode{
			key:     a.key,
			members: mergeSorted(a.members, b.members),
			size:    a.size + b.size,
		}
		id := len(nodes)
		nodes = append(nodes, merged)
		row := rowPool.Get(total)
		for _, k := range active {
			if k == bestA || k == bestB {
				continue
			}
			dk := link.Merge((*rows[bestA])[k], (*rows[bestB])[k], a.size, b.size)
			(*row)[k] = dk
			(*rows[k])[id] = dk
		}
		rows[id] = row

		rowPool.Put(rows[bestA])
		rowPool.Put(rows[bestB])
		rows[bestA], rows[bestB] = nil, nil

		next := active[:0]
		for _, k := range active {
			if k != bestA && k != bestB {
				next = append(next, k)
			}
		}
		active = append(next, id)
	}
	return d
}

// lessPair compares two candidate merges (kx,ky) < (bx,by) lexically, with
// each pair already ordered so that kx <= ky and bx <= by.
func lessPair(kx, ky, bx, by domain.Label) bool {
	if kx != bx {
		return kx < bx
	}
	return ky < by
}

// mergeSorted merges two sorted label slices into a new sorted slice.
func mergeSorted(a, b []domain.Label) []domain.Label {
	out := make([]domain.Label, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Len returns the number of leaf labels in the dendrogram.
func (d *Dendrogram) Len() int { return len(d.labels) }

// Heights returns the merge heights in merge order.
func (d *Dendrogram) Heights() []float64 {
	out := make([]float64, len(d.merges))
	for i, m := range d.merges {
		out[i] = m.Height
	}
	return out
}

// Cut produces the flat partition at the given height: two labels share a
// cluster exactly when their last common merge lies at or below the height.
// Cluster IDs are numbered 1..k in order of each cluster's smallest member.
func (d *Dendrogram) Cut(height float64) *domain.Partition {
	parent := make(map[domain.Label]domain.Label, len(d.labels))
	for _, l := range d.labels {
		parent[l] = l
	}
	var find func(domain.Label) domain.Label
	find = func(l domain.Label) domain.Label {
		if parent[l] != l {
			parent[l] = find(parent[l])
		}
		return parent[l]
	}
	for _, m := range d.merges {
		if m.Height > height+CutTolerance {
			break
		}
		ra, rb := find(m.A[0]), find(m.B[0])
		if ra != rb {
			// Root at the lexically smaller representative.
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	groups := make(map[domain.Label][]domain.Label)
	for _, l := range d.labels {
		r := find(l)
		groups[r] = append(groups[r], l)
	}
	roots := make([]domain.Label, 0, len(groups))
	for r := range groups {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	assignments := make(map[domain.Label]domain.ClusterID, len(d.labels))
	for i, r := range roots {
		id := domain.ClusterID(i + 1)
		for _, l := range groups[r] {
			assignments[l] = id
		}
	}
	return &domain.Partition{Assignments: assignments}
}

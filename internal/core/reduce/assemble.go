package reduce

import (
	"sort"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

// Assemble joins partition, representatives, parent terms and scores into the
// final assignment. It guarantees exactly one row per input label and a
// reduced matrix whose dimension equals the number of distinct
// representatives, values copied from the input matrix.
func Assemble(m *domain.SimilarityMatrix, p *domain.Partition, representatives map[domain.ClusterID]domain.Label, parents map[domain.Label]string, scores domain.ScoreMap) (*domain.ReducedAssignment, error) {
	labels := m.Labels()
	rows := make([]domain.AssignmentRow, 0, len(labels))
	for _, l := range labels {
		id := p.Assignments[l]
		rep := representatives[id]
		rows = append(rows, domain.AssignmentRow{
			Label:          l,
			Cluster:        id,
			Representative: rep,
			ParentTerm:     parents[rep],
			Score:          scores[l],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })

	distinct := make([]domain.Label, 0, len(representatives))
	seen := make(map[domain.Label]struct{}, len(representatives))
	for _, rep := range representatives {
		if _, ok := seen[rep]; !ok {
			seen[rep] = struct{}{}
			distinct = append(distinct, rep)
		}
	}
	reduced, err := m.Submatrix(distinct)
	if err != nil {
		return nil, err
	}

	reps := make(map[domain.ClusterID]domain.Label, len(representatives))
	for id, rep := range representatives {
		reps[id] = rep
	}

	return &domain.ReducedAssignment{
		Rows:            rows,
		Representatives: reps,
		ReducedMatrix:   reduced,
	}, nil
}

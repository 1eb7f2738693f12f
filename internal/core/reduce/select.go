package reduce

import (
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

// SelectRepresentatives picks the highest-scoring label of every cluster as
// its representative. Ties are broken toward the lexically smaller label so
// selection is deterministic even when rounded scores collide. Pure function
// of its inputs.
func SelectRepresentatives(p *domain.Partition, scores domain.ScoreMap) map[domain.ClusterID]domain.Label {
	out := make(map[domain.ClusterID]domain.Label, p.NumClusters())
	for id, members := range p.Clusters() {
		best := members[0]
		for _, l := range members[1:] {
			if scores[l] > scores[best] {
				best = l
			}
		}
		out[id] = best
	}
	return out
}

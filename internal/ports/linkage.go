package ports

// Linkage defines the strategy for computing the distance between a freshly
// merged cluster and every remaining cluster during agglomeration. Merge
// receives the distances from the two merged clusters i and j to a third
// cluster k, along with the sizes of i and j, and returns d(i∪j, k).
type Linkage interface {
	Name() string
	Merge(dik, djk float64, si, sj int) float64
}

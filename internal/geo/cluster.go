package geo

// ClusterRadius is the merge radius for heatmap clustering.
const ClusterRadius = 500.0

// Cluster is one anonymised heatmap cell.
type Cluster struct {
	Center Coordinate `json:"center"`
	Weight int        `json:"weight"`
}

// ClusterForHeatmap groups points with single-pass, single-linkage clustering.
//
// Each point joins the first existing cluster (in creation order, not the
// nearest) whose center lies within ClusterRadius; the center moves to the
// running mean of its members. Otherwise the point starts a new cluster.
// The result depends on input order and is not globally optimal. It is meant
// for anonymised visualisation only. Output keeps first-seen cluster order.
func ClusterForHeatmap(points []Coordinate) []Cluster {
	clusters := make([]Cluster, 0, len(points))
	for _, p := range points {
		merged := false
		for i := range clusters {
			c := &clusters[i]
			if Distance(p, c.Center) > ClusterRadius {
				continue
			}
			c.Weight++
			n := float64(c.Weight)
			c.Center.Latitude = (c.Center.Latitude*(n-1) + p.Latitude) / n
			c.Center.Longitude = (c.Center.Longitude*(n-1) + p.Longitude) / n
			merged = true
			break
		}
		if !merged {
			clusters = append(clusters, Cluster{Center: p, Weight: 1})
		}
	}
	return clusters
}

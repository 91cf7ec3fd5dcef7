package graph

import (
	"fmt"

	"github.com/cs-au-dk/absnum/utils"
	"github.com/cs-au-dk/absnum/utils/dot"
)

var opts = utils.Opts()

type VisualizationConfig[T any] struct {
	// Provides the ID and attributes for dot nodes.
	// If not provided, the ID is the stringified node.
	NodeAttrs func(node T) (string, dot.Attrs)
	// Provides attributes for the edge between two nodes.
	EdgeAttrs func(from, to T) dot.Attrs
	// Places a node in the cluster of the returned node, unless ok is false.
	// Cluster keys are nodes themselves, usually component heads.
	Cluster func(node T) (key T, ok bool)
	// Provides attributes for the cluster of a key.
	ClusterAttrs func(key T) dot.Attrs
}

// ToDotGraph builds a dot graph over the given nodes. Only edges between
// nodes in the list are included. Output order follows the order of nodes.
func (G Graph[T]) ToDotGraph(nodes []T, cfg *VisualizationConfig[T]) *dot.Graph {
	if cfg == nil {
		cfg = &VisualizationConfig[T]{}
	}

	dg := &dot.Graph{
		Attrs: dot.Attrs{
			"nodesep": fmt.Sprint(opts.Nodesep()),
			"rankdir": "TB",
		},
		EdgeDefaults: dot.Attrs{"minlen": fmt.Sprint(opts.Minlen())},
	}

	clusters := map[T]*dot.Cluster{}
	clusterOf := func(key T) *dot.Cluster {
		if c, found := clusters[key]; found {
			return c
		}
		c := &dot.Cluster{ID: fmt.Sprint(len(clusters))}
		if cfg.ClusterAttrs != nil {
			c.Attrs = cfg.ClusterAttrs(key)
		}
		clusters[key] = c
		dg.Clusters = append(dg.Clusters, c)
		return c
	}

	dotNodes := make(map[T]*dot.Node, len(nodes))
	for _, node := range nodes {
		dn := &dot.Node{ID: fmt.Sprint(node)}
		if cfg.NodeAttrs != nil {
			dn.ID, dn.Attrs = cfg.NodeAttrs(node)
		}
		dotNodes[node] = dn

		if cfg.Cluster != nil {
			if key, ok := cfg.Cluster(node); ok {
				c := clusterOf(key)
				c.Nodes = append(c.Nodes, dn)
				continue
			}
		}
		dg.Nodes = append(dg.Nodes, dn)
	}

	for _, node := range nodes {
		for _, succ := range G.Edges(node) {
			to, found := dotNodes[succ]
			if !found {
				continue
			}
			var attrs dot.Attrs
			if cfg.EdgeAttrs != nil {
				attrs = cfg.EdgeAttrs(node, succ)
			}
			dg.Edges = append(dg.Edges, &dot.Edge{From: dotNodes[node], To: to, Attrs: attrs})
		}
	}

	return dg
}

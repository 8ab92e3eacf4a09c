package sdk

import (
	"log/slog"

	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/skdltmxn/uedump/internal/layout"
)

type declNode struct {
	id   int64
	decl *layout.Struct
}

func (n *declNode) ID() int64 { return n.id }

// orderStructs sorts structs so that every super and every struct held by
// value within the same list comes before its dependants. Independent
// structs keep discovery order; on a cycle the discovery order is kept as
// a whole.
func orderStructs(log *slog.Logger, structs []*layout.Struct) []*layout.Struct {
	if len(structs) < 2 {
		return structs
	}

	g := multi.NewDirectedGraph()
	nodes := make([]*declNode, len(structs))
	byAddr := make(map[uint64]*declNode, len(structs))
	for i, s := range structs {
		nodes[i] = &declNode{id: int64(i), decl: s}
		byAddr[uint64(s.Addr)] = nodes[i]
		g.AddNode(nodes[i])
	}

	for _, n := range nodes {
		for _, dep := range n.decl.Depends {
			d, ok := byAddr[uint64(dep)]
			if !ok || d == n {
				continue
			}
			g.SetLine(g.NewLine(d, n))
		}
	}

	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		log.Warn("declaration cycle, keeping discovery order", "first", structs[0].FullName, "err", err)
		return structs
	}

	out := make([]*layout.Struct, len(sorted))
	for i, n := range sorted {
		out[i] = n.(*declNode).decl
	}
	return out
}


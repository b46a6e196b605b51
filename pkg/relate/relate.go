// Package relate derives the relationship graph of a building model:
// aggregation of the spatial structure, spatial containment of elements,
// hosted fixtures and filled openings.
package relate

import (
	"fmt"

	"github.com/chazu/bimgen/pkg/model"
)

// EdgeType enumerates relationship kinds.
type EdgeType int

const (
	Aggregates EdgeType = iota
	ContainedInSpatialStructure
	ConnectsElements
	FillsOpening
)

func (t EdgeType) String() string {
	switch t {
	case Aggregates:
		return "Aggregates"
	case ContainedInSpatialStructure:
		return "ContainedInSpatialStructure"
	case ConnectsElements:
		return "ConnectsElements"
	case FillsOpening:
		return "FillsOpening"
	default:
		return fmt.Sprintf("EdgeType(%d)", int(t))
	}
}

// Edge relates one entity to another.
type Edge struct {
	Type     EdgeType
	Relating model.ID // container, host or whole
	Related  model.ID // contained element, hosted element or part
}

// Group collects the edges of one type sharing a relating entity.
type Group struct {
	Type     EdgeType
	Relating model.ID
	Related  []model.ID
}

// Graph is the derived relationship graph.
type Graph struct {
	Edges  []Edge
	Groups []Group // ordered by first edge
}

// Count returns the number of edges of type t.
func (g *Graph) Count(t EdgeType) int {
	n := 0
	for _, e := range g.Edges {
		if e.Type == t {
			n++
		}
	}
	return n
}

// IntegrityError reports a broken reference or an invalid containment
// structure.
type IntegrityError struct {
	Code    string
	Entity  model.ID
	Message string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: %s: %s: %s", e.Code, e.Entity, e.Message)
}

// Build derives the relationship graph of m. The first integrity problem
// found is returned.
func Build(m *model.Model) (*Graph, error) {
	if err := checkAcyclic(m); err != nil {
		return nil, err
	}

	g := &Graph{}
	for _, e := range m.Entities() {
		if err := g.addParent(m, e); err != nil {
			return nil, err
		}
	}
	for _, e := range m.Entities() {
		if err := g.addHosts(m, e); err != nil {
			return nil, err
		}
	}
	g.group()
	return g, nil
}

func (g *Graph) addParent(m *model.Model, e *model.Entity) error {
	if e.Parent.IsZero() {
		if e.Kind != model.KindProject {
			return &IntegrityError{Code: "ORPHAN", Entity: e.ID,
				Message: fmt.Sprintf("%s %q has no spatial parent", e.Kind, e.Name)}
		}
		return nil
	}
	parent := m.Get(e.Parent)
	if parent == nil {
		return &IntegrityError{Code: "MISSING_PARENT", Entity: e.ID,
			Message: fmt.Sprintf("parent %s does not exist", e.Parent)}
	}
	if !parent.Kind.IsSpatial() {
		return &IntegrityError{Code: "NON_SPATIAL_PARENT", Entity: e.ID,
			Message: fmt.Sprintf("parent %s is a %s", parent.ID, parent.Kind)}
	}

	typ := ContainedInSpatialStructure
	if e.Kind.IsSpatial() {
		if e.Kind <= parent.Kind {
			return &IntegrityError{Code: "INVALID_AGGREGATION", Entity: e.ID,
				Message: fmt.Sprintf("%s cannot be part of a %s", e.Kind, parent.Kind)}
		}
		typ = Aggregates
	}
	g.Edges = append(g.Edges, Edge{Type: typ, Relating: parent.ID, Related: e.ID})
	return nil
}

func (g *Graph) addHosts(m *model.Model, e *model.Entity) error {
	switch d := e.Data.(type) {
	case model.OpeningData:
		host := m.Get(d.Host)
		if host == nil {
			return &IntegrityError{Code: "MISSING_HOST", Entity: e.ID,
				Message: fmt.Sprintf("host wall %s does not exist", d.Host)}
		}
		if host.Kind != model.KindWall {
			return &IntegrityError{Code: "INVALID_HOST", Entity: e.ID,
				Message: fmt.Sprintf("opening host %s is a %s", host.ID, host.Kind)}
		}
		g.Edges = append(g.Edges, Edge{Type: FillsOpening, Relating: host.ID, Related: e.ID})
	case model.FixtureData:
		host := m.Get(d.Host)
		if host == nil {
			return &IntegrityError{Code: "MISSING_HOST", Entity: e.ID,
				Message: fmt.Sprintf("host element %s does not exist", d.Host)}
		}
		if !host.Kind.IsElement() {
			return &IntegrityError{Code: "INVALID_HOST", Entity: e.ID,
				Message: fmt.Sprintf("fixture host %s is a %s", host.ID, host.Kind)}
		}
		g.Edges = append(g.Edges, Edge{Type: ConnectsElements, Relating: host.ID, Related: e.ID})
	}
	return nil
}

// group collects edges by (type, relating), ordering groups by their
// first edge and members by edge order.
func (g *Graph) group() {
	type key struct {
		t EdgeType
		r model.ID
	}
	index := make(map[key]int)
	for _, e := range g.Edges {
		k := key{e.Type, e.Relating}
		i, ok := index[k]
		if !ok {
			i = len(g.Groups)
			index[k] = i
			g.Groups = append(g.Groups, Group{Type: e.Type, Relating: e.Relating})
		}
		g.Groups[i].Related = append(g.Groups[i].Related, e.Related)
	}
}

// checkAcyclic walks parent references with 3-color marking.
// White (0) = unvisited, gray (1) = on the current path, black (2) = done.
// Reaching a gray entity means the containment structure has a cycle.
func checkAcyclic(m *model.Model) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[model.ID]int)

	for _, start := range m.Entities() {
		var path []model.ID
		id := start.ID
		for !id.IsZero() && color[id] == white {
			e := m.Get(id)
			if e == nil {
				// Dangling parent; reported by addParent.
				break
			}
			color[id] = gray
			path = append(path, id)
			id = e.Parent
		}
		if !id.IsZero() && color[id] == gray {
			return &IntegrityError{Code: "CONTAINMENT_CYCLE", Entity: id,
				Message: fmt.Sprintf("%s is its own spatial ancestor", id)}
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return nil
}

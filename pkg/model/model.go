package model

import "fmt"

// Builder appends entities to a model under construction. Earlier
// entities are never modified by later stages; they only gain siblings.
type Builder struct {
	entities []*Entity
	names    map[string]ID
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{names: make(map[string]ID)}
}

// Add appends e, assigns its ID, and returns it.
func (b *Builder) Add(e *Entity) ID {
	e.ID = ID(len(b.entities) + 1)
	b.entities = append(b.entities, e)
	if e.Name != "" {
		if _, taken := b.names[qualified(e.Parent, e.Name)]; !taken {
			b.names[qualified(e.Parent, e.Name)] = e.ID
		}
	}
	return e.ID
}

// Get returns the entity with id, or nil.
func (b *Builder) Get(id ID) *Entity {
	if id <= 0 || int(id) > len(b.entities) {
		return nil
	}
	return b.entities[id-1]
}

// Find returns the first entity named name under parent.
func (b *Builder) Find(parent ID, name string) *Entity {
	id, ok := b.names[qualified(parent, name)]
	if !ok {
		return nil
	}
	return b.Get(id)
}

// Len returns the number of entities added so far.
func (b *Builder) Len() int { return len(b.entities) }

// Build freezes the entities into a Model. The Builder must not be used
// afterwards.
func (b *Builder) Build() *Model {
	m := &Model{
		entities: b.entities,
		children: make(map[ID][]ID),
	}
	for _, e := range m.entities {
		if !e.Parent.IsZero() {
			m.children[e.Parent] = append(m.children[e.Parent], e.ID)
		}
	}
	b.entities = nil
	return m
}

func qualified(parent ID, name string) string {
	return fmt.Sprintf("%d/%s", int(parent), name)
}

// Model is a frozen building model. Geometry is read-only; Annotate is
// the single permitted change.
type Model struct {
	entities []*Entity
	children map[ID][]ID
}

// Get returns the entity with id, or nil.
func (m *Model) Get(id ID) *Entity {
	if id <= 0 || int(id) > len(m.entities) {
		return nil
	}
	return m.entities[id-1]
}

// Has reports whether id resolves to an entity.
func (m *Model) Has(id ID) bool { return m.Get(id) != nil }

// Entities returns all entities in creation order.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, len(m.entities))
	copy(out, m.entities)
	return out
}

// Len returns the number of entities.
func (m *Model) Len() int { return len(m.entities) }

// Root returns the project entity, or nil for an empty model.
func (m *Model) Root() *Entity {
	for _, e := range m.entities {
		if e.Kind == KindProject {
			return e
		}
	}
	return nil
}

// Children returns the entities whose parent is id, in creation order.
func (m *Model) Children(id ID) []*Entity {
	ids := m.children[id]
	out := make([]*Entity, 0, len(ids))
	for _, cid := range ids {
		out = append(out, m.Get(cid))
	}
	return out
}

// ByKind returns all entities of kind k in creation order.
func (m *Model) ByKind(k Kind) []*Entity {
	var out []*Entity
	for _, e := range m.entities {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Stories returns the stories in stacking order.
func (m *Model) Stories() []*Entity { return m.ByKind(KindStory) }

// Elements returns every physical element in creation order.
func (m *Model) Elements() []*Entity {
	var out []*Entity
	for _, e := range m.entities {
		if e.Kind.IsElement() {
			out = append(out, e)
		}
	}
	return out
}

// Story returns the story that contains e, walking up through spaces.
func (m *Model) Story(e *Entity) *Entity {
	for cur := e; cur != nil; cur = m.Get(cur.Parent) {
		if cur.Kind == KindStory {
			return cur
		}
	}
	return nil
}

// Annotate sets the semantic tag and property record of an unclassified
// entity. It reports false, and changes nothing, when the entity is
// missing or already classified.
func (m *Model) Annotate(id ID, class string, props PropertyRecord) bool {
	e := m.Get(id)
	if e == nil || e.Classified() {
		return false
	}
	e.Class = class
	e.Properties = props
	return true
}

package types

import "fmt"

// ---------------------
// ----- Constants -----
// ---------------------

// color marks DFS visitation state during cycle detection in Finalize.
type color int

const (
	white color = iota // Unvisited.
	gray               // On the current DFS path.
	black              // Fully explored.
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Registry is the canonical store of named types. It is built once by a
// sequence of Declare calls followed by a single Finalize call, and only
// read thereafter via Lookup, IsAncestor, LCA and FindMethod.
type Registry struct {
	types []*Type          // Declaration order; indexing by TypeID after Finalize.
	byName map[string]*Type
	finalized bool
}

// NewRegistry returns a Registry pre-seeded with the five built-in
// types. Object is the implicit root of every user-declared type that
// does not name a parent explicitly.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Type, 8)}
	for _, name := range []string{Unknown, Object, Number, Boolean, String} {
		t := &Type{Name: name, TypeID: -1, builtin: true,
			fields: map[string]*Field{}, methods: map[string]*Method{}}
		if name != Object && name != Unknown {
			t.ParentName = Object
		}
		r.types = append(r.types, t)
		r.byName[name] = t
	}
	return r
}

// Declare records the shell of a user type definition: its name, parent
// name (unresolved until Finalize), constructor parameters and members.
// Fields and methods are passed in already split by kind and in
// declaration order.
func (r *Registry) Declare(name, parent string, params []Param, fields []Field, methods []Method) error {
	if name == parent {
		return fmt.Errorf("type %q cannot inherit from itself", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("type %q is already defined", name)
	}
	if parent == "" {
		parent = Object
	}

	t := &Type{
		Name:       name,
		ParentName: parent,
		TypeID:     -1,
		Params:     params,
		fields:     make(map[string]*Field, len(fields)),
		methods:    make(map[string]*Method, len(methods)),
	}
	for i1 := range fields {
		f := fields[i1]
		t.fields[f.Name] = &f
		t.FieldOrder = append(t.FieldOrder, f.Name)
	}
	for i1 := range methods {
		m := methods[i1]
		m.Owner = name
		t.methods[m.Name] = &m
		t.MethodOrder = append(t.MethodOrder, m.Name)
	}

	r.types = append(r.types, t)
	r.byName[name] = t
	return nil
}

// Lookup returns the Type named name, or nil if no such type has been
// declared (built-in or user).
func (r *Registry) Lookup(name string) *Type {
	return r.byName[name]
}

// Finalize resolves parent links, detects inheritance cycles, assigns
// dense 0-based type-ids in topological order (parents before
// children), and computes field and vtable layouts. It must be called
// exactly once, after all Declare calls and before any Lookup-dependent
// analysis.
func (r *Registry) Finalize() []error {
	var errs []error

	// Resolve parent pointers.
	for _, t := range r.types {
		if t.ParentName == "" {
			continue
		}
		p, ok := r.byName[t.ParentName]
		if !ok {
			errs = append(errs, fmt.Errorf("type %q inherits from undefined type %q", t.Name, t.ParentName))
			continue
		}
		t.Parent = p
	}
	if len(errs) > 0 {
		return errs
	}

	// Detect cycles via DFS gray/black coloring; report the first gray
	// revisit encountered.
	colors := make(map[string]color, len(r.types))
	var visit func(t *Type) *Type
	visit = func(t *Type) *Type {
		colors[t.Name] = gray
		if t.Parent != nil {
			switch colors[t.Parent.Name] {
			case gray:
				return t.Parent
			case white:
				if cyc := visit(t.Parent); cyc != nil {
					return cyc
				}
			}
		}
		colors[t.Name] = black
		return nil
	}
	for _, t := range r.types {
		if colors[t.Name] == white {
			if cyc := visit(t); cyc != nil {
				errs = append(errs, fmt.Errorf("inheritance cycle detected at type %q", cyc.Name))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// Assign dense type-ids in topological order: parents before children.
	assigned := make(map[string]bool, len(r.types))
	ordered := make([]*Type, 0, len(r.types))
	var assign func(t *Type)
	assign = func(t *Type) {
		if assigned[t.Name] {
			return
		}
		if t.Parent != nil {
			assign(t.Parent)
		}
		t.TypeID = len(ordered)
		assigned[t.Name] = true
		ordered = append(ordered, t)
	}
	for _, t := range r.types {
		assign(t)
	}
	r.types = ordered

	// Compute field and vtable layouts, parents before children (ordered
	// already guarantees this).
	for _, t := range r.types {
		if t.Parent != nil {
			t.Layout = append(t.Layout, t.Parent.Layout...)
		}
		slot := len(t.Layout) + 2 // Slot 0 = type-id, slot 1 = parent pointer.
		for _, name := range t.FieldOrder {
			f := t.fields[name]
			f.Slot = slot
			t.Layout = append(t.Layout, *f)
			slot++
		}

		if t.Parent != nil {
			t.VTable = append(t.VTable, t.Parent.VTable...)
		}
		for _, name := range t.MethodOrder {
			m := t.methods[name]
			replaced := false
			for i1, existing := range t.VTable {
				if existing.Name == name {
					m.Slot = existing.Slot
					t.VTable[i1] = m
					replaced = true
					break
				}
			}
			if !replaced {
				m.Slot = len(t.VTable)
				t.VTable = append(t.VTable, m)
			}
		}
	}

	r.finalized = true
	return nil
}

// Count returns the number of types registered, including built-ins.
// After Finalize this equals N, the size of the super-vtable.
func (r *Registry) Count() int {
	return len(r.types)
}

// Types returns the registered types in type-id order (valid after
// Finalize; declaration order before it).
func (r *Registry) Types() []*Type {
	return r.types
}

// IsAncestor reports whether ancestor is ancestor of descendant, or
// equal to it (reflexive).
func (r *Registry) IsAncestor(ancestor, descendant *Type) bool {
	if ancestor == nil || descendant == nil {
		return false
	}
	for t := descendant; t != nil; t = t.Parent {
		if t.Name == ancestor.Name {
			return true
		}
	}
	return false
}

// LCA returns the lowest common ancestor of a and b in the inheritance
// tree. Object is returned at worst, since every declared type descends
// from it.
func (r *Registry) LCA(a, b *Type) *Type {
	if a == nil || b == nil {
		return r.Lookup(Object)
	}
	ancestors := make(map[string]bool)
	for t := a; t != nil; t = t.Parent {
		ancestors[t.Name] = true
	}
	for t := b; t != nil; t = t.Parent {
		if ancestors[t.Name] {
			return t
		}
	}
	return r.Lookup(Object)
}

// FindMethod searches for a method named name on t, then walks t's
// ancestors until it finds one. It returns the most-derived signature
// reachable from t (which equals t.VTable's slot contents after
// Finalize, but FindMethod works before Finalize too, for analyzer
// passes that run ahead of layout computation).
func (r *Registry) FindMethod(t *Type, name string) *Method {
	for cur := t; cur != nil; cur = cur.Parent {
		if m, ok := cur.methods[name]; ok {
			return m
		}
	}
	return nil
}

package types

import "testing"

func TestFinalizeFlattensInheritedFields(t *testing.T) {
	r := NewRegistry()
	if err := r.Declare("Animal", "", nil,
		[]Field{{Name: "name", TypeName: String}}, nil); err != nil {
		t.Fatalf("declare Animal: %v", err)
	}
	if err := r.Declare("Dog", "Animal", nil,
		[]Field{{Name: "breed", TypeName: String}}, nil); err != nil {
		t.Fatalf("declare Dog: %v", err)
	}
	if errs := r.Finalize(); len(errs) > 0 {
		t.Fatalf("unexpected finalize errors: %v", errs)
	}

	dog := r.Lookup("Dog")
	if len(dog.Layout) != 2 {
		t.Fatalf("expected 2 flattened fields on Dog, got %d", len(dog.Layout))
	}
	if dog.Layout[0].Name != "name" || dog.Layout[0].Slot != 2 {
		t.Errorf("expected inherited field 'name' at slot 2, got %+v", dog.Layout[0])
	}
	if dog.Layout[1].Name != "breed" || dog.Layout[1].Slot != 3 {
		t.Errorf("expected own field 'breed' at slot 3, got %+v", dog.Layout[1])
	}
}

func TestFinalizeAssignsTypeIDsParentsBeforeChildren(t *testing.T) {
	r := NewRegistry()
	_ = r.Declare("B", "A", nil, nil, nil)
	_ = r.Declare("A", "", nil, nil, nil)
	if errs := r.Finalize(); len(errs) > 0 {
		t.Fatalf("unexpected finalize errors: %v", errs)
	}
	a, b := r.Lookup("A"), r.Lookup("B")
	if a.TypeID >= b.TypeID {
		t.Errorf("expected A's type-id (%d) before B's (%d)", a.TypeID, b.TypeID)
	}
}

func TestFinalizeDetectsInheritanceCycle(t *testing.T) {
	r := NewRegistry()
	_ = r.Declare("A", "B", nil, nil, nil)
	_ = r.Declare("B", "A", nil, nil, nil)
	errs := r.Finalize()
	if len(errs) == 0 {
		t.Fatal("expected a cycle error, got none")
	}
}

func TestFinalizeRejectsUndefinedParent(t *testing.T) {
	r := NewRegistry()
	_ = r.Declare("A", "Ghost", nil, nil, nil)
	errs := r.Finalize()
	if len(errs) == 0 {
		t.Fatal("expected an undefined-parent error, got none")
	}
}

func TestVTableOverrideReplacesSlotInPlace(t *testing.T) {
	r := NewRegistry()
	_ = r.Declare("Animal", "", nil, nil, []Method{{Name: "speak", ReturnName: String}})
	_ = r.Declare("Dog", "Animal", nil, nil, []Method{{Name: "speak", ReturnName: String}})
	if errs := r.Finalize(); len(errs) > 0 {
		t.Fatalf("unexpected finalize errors: %v", errs)
	}

	dog := r.Lookup("Dog")
	if len(dog.VTable) != 1 {
		t.Fatalf("expected exactly one vtable slot, got %d", len(dog.VTable))
	}
	if dog.VTable[0].Owner != "Dog" {
		t.Errorf("expected override owner Dog, got %s", dog.VTable[0].Owner)
	}

	animal := r.Lookup("Animal")
	if animal.VTable[0].Slot != dog.VTable[0].Slot {
		t.Errorf("expected override to keep the same slot as the base declaration")
	}
}

func TestIsAncestorAndLCA(t *testing.T) {
	r := NewRegistry()
	_ = r.Declare("Animal", "", nil, nil, nil)
	_ = r.Declare("Dog", "Animal", nil, nil, nil)
	_ = r.Declare("Cat", "Animal", nil, nil, nil)
	if errs := r.Finalize(); len(errs) > 0 {
		t.Fatalf("unexpected finalize errors: %v", errs)
	}

	dog, cat, animal := r.Lookup("Dog"), r.Lookup("Cat"), r.Lookup("Animal")
	if !r.IsAncestor(animal, dog) {
		t.Error("expected Animal to be an ancestor of Dog")
	}
	if r.IsAncestor(dog, cat) {
		t.Error("did not expect Dog to be an ancestor of Cat")
	}
	if lca := r.LCA(dog, cat); lca.Name != "Animal" {
		t.Errorf("expected LCA(Dog, Cat) = Animal, got %s", lca.Name)
	}
}

func TestFindMethodWalksAncestors(t *testing.T) {
	r := NewRegistry()
	_ = r.Declare("Animal", "", nil, nil, []Method{{Name: "speak", ReturnName: String}})
	_ = r.Declare("Dog", "Animal", nil, nil, nil)
	if errs := r.Finalize(); len(errs) > 0 {
		t.Fatalf("unexpected finalize errors: %v", errs)
	}
	dog := r.Lookup("Dog")
	m := r.FindMethod(dog, "speak")
	if m == nil || m.Owner != "Animal" {
		t.Fatalf("expected to find speak owned by Animal, got %+v", m)
	}
}

package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ayusman/mudra/internal/input"
)

func testProfile(name string) *Keymap {
	return &Keymap{
		Name:         name,
		Labels:       []string{"open", "fist", "point"},
		Shortcuts:    []string{"KEY_Command+KEY_C", "", "KEY_Space"},
		MouseActions: []string{"2", "1", "-1", "-1", "-1"},
	}
}

func TestKeymapRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	k := testProfile("default")
	if err := repo.Create(k); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if k.ID == "" {
		t.Fatal("Create() left ID empty")
	}
	if k.CreatedAt.IsZero() || k.UpdatedAt.IsZero() {
		t.Error("timestamps should be set after create")
	}

	got, err := repo.GetByID(k.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if diff := cmp.Diff(k, got, cmpopts.IgnoreFields(Keymap{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("GetByID() mismatch (-want +got):\n%s", diff)
	}

	byName, err := repo.GetByName("default")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName.ID != k.ID {
		t.Errorf("GetByName().ID = %q, want %q", byName.ID, k.ID)
	}
}

func TestKeymapRepository_CreateDuplicateName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	if err := repo.Create(testProfile("dup")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(testProfile("dup")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create(duplicate) error = %v, want %v", err, ErrDuplicate)
	}
}

func TestKeymapRepository_NoMouseActions(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	k := testProfile("keys-only")
	k.MouseActions = nil
	if err := repo.Create(k); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(k.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.MouseActions != nil {
		t.Errorf("MouseActions = %q, want nil", got.MouseActions)
	}
}

func TestKeymapRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := repo.Create(testProfile(name)); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, k := range list {
		names = append(names, k.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names); diff != "" {
		t.Errorf("List() names mismatch (-want +got):\n%s", diff)
	}
}

func TestKeymapRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	k := testProfile("before")
	if err := repo.Create(k); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	k.Name = "after"
	k.Shortcuts = []string{"KEY_A", "KEY_B", "KEY_C"}
	if err := repo.Update(k); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(k.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "after" {
		t.Errorf("Name = %q, want %q", got.Name, "after")
	}
	if diff := cmp.Diff(k.Shortcuts, got.Shortcuts); diff != "" {
		t.Errorf("Shortcuts mismatch (-want +got):\n%s", diff)
	}

	missing := testProfile("missing")
	missing.ID = "nope"
	if err := repo.Update(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want %v", err, ErrNotFound)
	}
}

func TestKeymapRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	k := testProfile("gone")
	if err := repo.Create(k); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(k.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(k.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want %v", err, ErrNotFound)
	}
	if err := repo.Delete(k.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, ErrNotFound)
	}
}

func TestKeymapRepository_Resolve(t *testing.T) {
	s := newTestStore(t)
	repo := s.Keymaps()

	k := testProfile("office")
	if err := repo.Create(k); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, ref := range []string{k.ID, "office"} {
		got, err := repo.Resolve(ref)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", ref, err)
		}
		if got.ID != k.ID {
			t.Errorf("Resolve(%q).ID = %q, want %q", ref, got.ID, k.ID)
		}
	}
	if _, err := repo.Resolve("unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(unknown) error = %v, want %v", err, ErrNotFound)
	}
}

func TestKeymap_Bindings(t *testing.T) {
	km, err := testProfile("bindings").Keymap()
	if err != nil {
		t.Fatalf("Keymap() error = %v", err)
	}

	if c, ok := km.MouseAction(2); !ok || c != input.MouseMove {
		t.Errorf("MouseAction(2) = %v, %v, want %v", c, ok, input.MouseMove)
	}
	if c, ok := km.MouseAction(1); !ok || c != input.MouseLeftClick {
		t.Errorf("MouseAction(1) = %v, %v, want %v", c, ok, input.MouseLeftClick)
	}
	if _, ok := km.Keys(1); ok {
		t.Error("Keys(1) bound, want unbound")
	}

	back := FromKeymap("copy", km)
	if diff := cmp.Diff(km.Labels, back.Labels); diff != "" {
		t.Errorf("FromKeymap labels mismatch (-want +got):\n%s", diff)
	}
}

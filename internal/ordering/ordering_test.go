package ordering

import (
	"context"
	"math/rand"
	"testing"

	"plan-review/internal/apperror"
	"plan-review/internal/models"
)

type stubStore struct {
	children map[uint]*models.Child
	nextID   uint
	// corrupt makes UpdatePositions write the wrong position
	corrupt bool
}

func newStubStore() *stubStore {
	return &stubStore{children: map[uint]*models.Child{}, nextID: 1}
}

func (s *stubStore) ListChildren(_ context.Context, ownerID uint) ([]models.Child, error) {
	var out []models.Child
	for _, c := range s.children {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return Sorted(out), nil
}

func (s *stubStore) InsertChild(_ context.Context, child *models.Child) error {
	child.ID = s.nextID
	s.nextID++
	copy := *child
	s.children[child.ID] = &copy
	return nil
}

func (s *stubStore) DeleteChild(_ context.Context, id uint) error {
	delete(s.children, id)
	return nil
}

func (s *stubStore) UpdatePositions(_ context.Context, _ uint, moves []Move) error {
	for _, m := range moves {
		if c, ok := s.children[m.ChildID]; ok {
			c.Position = m.To
			if s.corrupt {
				c.Position = 1
			}
		}
	}
	return nil
}

func seed(t *testing.T, s *stubStore, ownerID uint, titles ...string) map[string]uint {
	t.Helper()
	ids := map[string]uint{}
	for _, title := range titles {
		c, err := Insert(context.Background(), s, ownerID, models.Fields{"title": title}, 0)
		if err != nil {
			t.Fatalf("Insert(%s) returned error: %v", title, err)
		}
		ids[title] = c.ID
	}
	return ids
}

func titlesInOrder(t *testing.T, s *stubStore, ownerID uint) []string {
	t.Helper()
	children, _ := s.ListChildren(context.Background(), ownerID)
	var out []string
	for _, c := range children {
		out = append(out, c.Content["title"])
	}
	return out
}

func assertOrder(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestInsertAppends(t *testing.T) {
	s := newStubStore()
	seed(t, s, 1, "A", "B", "C")

	children, _ := s.ListChildren(context.Background(), 1)
	for i, c := range children {
		if c.Position != i+1 {
			t.Errorf("child %s at position %d, want %d", c.Content["title"], c.Position, i+1)
		}
	}
}

func TestInsertAtExplicitPosition(t *testing.T) {
	s := newStubStore()
	seed(t, s, 1, "A", "B", "C")

	if _, err := Insert(context.Background(), s, 1, models.Fields{"title": "X"}, 2); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	assertOrder(t, titlesInOrder(t, s, 1), "A", "X", "B", "C")

	if _, err := Insert(context.Background(), s, 1, models.Fields{"title": "Y"}, 6); err == nil {
		t.Fatalf("expected invalid position error")
	} else if !apperror.IsKind(err, apperror.KindInvalid) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestRemoveRenumbers(t *testing.T) {
	s := newStubStore()
	ids := seed(t, s, 1, "A", "B", "C")

	if _, err := Remove(context.Background(), s, 1, ids["B"]); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}

	children, _ := s.ListChildren(context.Background(), 1)
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if children[0].Content["title"] != "A" || children[0].Position != 1 {
		t.Errorf("first = %+v, want A at 1", children[0])
	}
	if children[1].Content["title"] != "C" || children[1].Position != 2 {
		t.Errorf("second = %+v, want C at 2", children[1])
	}
}

func TestRemoveSentChildIsForbidden(t *testing.T) {
	s := newStubStore()
	ids := seed(t, s, 1, "A", "B")
	s.children[ids["A"]].SentToApplicant = true

	_, err := Remove(context.Background(), s, 1, ids["A"])
	if !apperror.IsKind(err, apperror.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	assertOrder(t, titlesInOrder(t, s, 1), "A", "B")
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name   string
		move   string
		target int
		want   []string
	}{
		{"forward", "A", 2, []string{"B", "A", "C"}},
		{"to end", "A", 3, []string{"B", "C", "A"}},
		{"backward", "C", 1, []string{"C", "A", "B"}},
		{"middle back", "C", 2, []string{"A", "C", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStubStore()
			ids := seed(t, s, 1, "A", "B", "C")

			changed, err := Reorder(context.Background(), s, 1, ids[tt.move], tt.target)
			if err != nil {
				t.Fatalf("Reorder returned error: %v", err)
			}
			if !changed {
				t.Fatalf("expected a change")
			}
			assertOrder(t, titlesInOrder(t, s, 1), tt.want...)
		})
	}
}

func TestReorderToSamePositionIsNoop(t *testing.T) {
	s := newStubStore()
	ids := seed(t, s, 1, "A", "B", "C")

	changed, err := Reorder(context.Background(), s, 1, ids["B"], 2)
	if err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}
	if changed {
		t.Errorf("expected no change")
	}
	assertOrder(t, titlesInOrder(t, s, 1), "A", "B", "C")
}

func TestReorderOutOfRange(t *testing.T) {
	s := newStubStore()
	ids := seed(t, s, 1, "A", "B")

	for _, target := range []int{0, 3, -1} {
		if _, err := Reorder(context.Background(), s, 1, ids["A"], target); !apperror.IsKind(err, apperror.KindInvalid) {
			t.Errorf("target %d: expected invalid, got %v", target, err)
		}
	}
}

func TestReorderDetectsCorruptWrite(t *testing.T) {
	s := newStubStore()
	ids := seed(t, s, 1, "A", "B", "C")
	s.corrupt = true

	_, err := Reorder(context.Background(), s, 1, ids["A"], 3)
	if !apperror.IsKind(err, apperror.KindPositionConflict) {
		t.Fatalf("expected position conflict, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		wantErr   bool
	}{
		{"empty", nil, false},
		{"dense", []int{2, 1, 3}, false},
		{"gap", []int{1, 3}, true},
		{"duplicate", []int{1, 1}, true},
		{"zero", []int{0, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var children []models.Child
			for i, p := range tt.positions {
				children = append(children, models.Child{ID: uint(i + 1), Position: p})
			}
			err := Validate(children)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDensityUnderRandomOperations(t *testing.T) {
	s := newStubStore()
	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		children, _ := s.ListChildren(ctx, 1)
		n := len(children)

		switch op := rng.Intn(3); {
		case op == 0 || n == 0:
			if _, err := Insert(ctx, s, 1, models.Fields{"title": "x"}, rng.Intn(n+2)); err != nil {
				t.Fatalf("step %d: Insert returned error: %v", i, err)
			}
		case op == 1:
			victim := children[rng.Intn(n)]
			if _, err := Remove(ctx, s, 1, victim.ID); err != nil {
				t.Fatalf("step %d: Remove returned error: %v", i, err)
			}
		default:
			moved := children[rng.Intn(n)]
			if _, err := Reorder(ctx, s, 1, moved.ID, rng.Intn(n)+1); err != nil {
				t.Fatalf("step %d: Reorder returned error: %v", i, err)
			}
		}

		after, _ := s.ListChildren(ctx, 1)
		if err := Validate(after); err != nil {
			t.Fatalf("step %d: density violated: %v", i, err)
		}
	}
}

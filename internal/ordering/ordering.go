package ordering

import (
	"context"
	"fmt"
	"sort"

	"plan-review/internal/apperror"
	"plan-review/internal/models"
)

// Move relocates one child to a new position
type Move struct {
	ChildID uint
	From    int
	To      int
}

// Store is the persistence needed to maintain a dense ordering.
// Implementations run inside a transaction with the owning unit locked.
type Store interface {
	ListChildren(ctx context.Context, ownerID uint) ([]models.Child, error)
	InsertChild(ctx context.Context, child *models.Child) error
	DeleteChild(ctx context.Context, childID uint) error
	UpdatePositions(ctx context.Context, ownerID uint, moves []Move) error
}

// Sorted returns a copy of children ordered by position
func Sorted(children []models.Child) []models.Child {
	out := make([]models.Child, len(children))
	copy(out, children)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

// Validate checks that positions are exactly 1..N
func Validate(children []models.Child) error {
	seen := make(map[int]uint, len(children))
	for _, c := range children {
		if c.Position < 1 || c.Position > len(children) {
			return apperror.PositionConflict(fmt.Sprintf("child %d has position %d outside 1..%d", c.ID, c.Position, len(children)))
		}
		if other, dup := seen[c.Position]; dup {
			return apperror.PositionConflict(fmt.Sprintf("children %d and %d share position %d", other, c.ID, c.Position))
		}
		seen[c.Position] = c.ID
	}
	return nil
}

// Apply returns the children with the moves applied
func Apply(children []models.Child, moves []Move) []models.Child {
	targets := make(map[uint]int, len(moves))
	for _, m := range moves {
		targets[m.ChildID] = m.To
	}

	out := make([]models.Child, len(children))
	for i, c := range children {
		if to, ok := targets[c.ID]; ok {
			c.Position = to
		}
		out[i] = c
	}
	return Sorted(out)
}

// PlanInsert resolves the slot for a new child. A position of 0 appends.
// It returns the chosen position and the sibling shifts needed to free it.
func PlanInsert(children []models.Child, position int) (int, []Move, error) {
	n := len(children)
	if position == 0 {
		return n + 1, nil, nil
	}
	if position < 1 || position > n+1 {
		return 0, nil, apperror.Invalid("position", fmt.Sprintf("position must be between 1 and %d", n+1))
	}

	var moves []Move
	for _, c := range Sorted(children) {
		if c.Position >= position {
			moves = append(moves, Move{ChildID: c.ID, From: c.Position, To: c.Position + 1})
		}
	}
	return position, moves, nil
}

// PlanRemove returns the shifts that close the gap left by childID
func PlanRemove(children []models.Child, childID uint) (*models.Child, []Move, error) {
	target := find(children, childID)
	if target == nil {
		return nil, nil, apperror.NotFound("child not found")
	}
	if target.SentToApplicant {
		return nil, nil, apperror.Forbidden("child has been sent to the applicant and cannot be removed")
	}

	var moves []Move
	for _, c := range Sorted(children) {
		if c.Position > target.Position {
			moves = append(moves, Move{ChildID: c.ID, From: c.Position, To: c.Position - 1})
		}
	}
	return target, moves, nil
}

// PlanReorder returns the moves that place childID at target.
// A target equal to the current position yields no moves.
func PlanReorder(children []models.Child, childID uint, target int) ([]Move, error) {
	moved := find(children, childID)
	if moved == nil {
		return nil, apperror.NotFound("child not found")
	}
	if target < 1 || target > len(children) {
		return nil, apperror.Invalid("position", fmt.Sprintf("position must be between 1 and %d", len(children)))
	}

	from := moved.Position
	if from == target {
		return nil, nil
	}

	moves := []Move{{ChildID: moved.ID, From: from, To: target}}
	for _, c := range Sorted(children) {
		switch {
		case c.ID == moved.ID:
			continue
		case from < target && c.Position > from && c.Position <= target:
			moves = append(moves, Move{ChildID: c.ID, From: c.Position, To: c.Position - 1})
		case from > target && c.Position >= target && c.Position < from:
			moves = append(moves, Move{ChildID: c.ID, From: c.Position, To: c.Position + 1})
		}
	}
	return moves, nil
}

// Insert adds a child to ownerID, appending when position is 0
func Insert(ctx context.Context, s Store, ownerID uint, content models.Fields, position int) (*models.Child, error) {
	children, err := s.ListChildren(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	if err := Validate(children); err != nil {
		return nil, err
	}

	slot, moves, err := PlanInsert(children, position)
	if err != nil {
		return nil, err
	}

	if len(moves) > 0 {
		if err := s.UpdatePositions(ctx, ownerID, moves); err != nil {
			return nil, fmt.Errorf("failed to shift children: %w", err)
		}
	}

	child := &models.Child{
		OwnerID:  ownerID,
		Position: slot,
		Content:  content.Clone(),
	}
	if err := s.InsertChild(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to insert child: %w", err)
	}

	if err := verify(ctx, s, ownerID); err != nil {
		return nil, err
	}
	return child, nil
}

// Remove deletes a child and closes the gap it leaves
func Remove(ctx context.Context, s Store, ownerID, childID uint) (*models.Child, error) {
	children, err := s.ListChildren(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	if err := Validate(children); err != nil {
		return nil, err
	}

	removed, moves, err := PlanRemove(children, childID)
	if err != nil {
		return nil, err
	}

	if err := s.DeleteChild(ctx, childID); err != nil {
		return nil, fmt.Errorf("failed to delete child: %w", err)
	}
	if len(moves) > 0 {
		if err := s.UpdatePositions(ctx, ownerID, moves); err != nil {
			return nil, fmt.Errorf("failed to shift children: %w", err)
		}
	}

	if err := verify(ctx, s, ownerID); err != nil {
		return nil, err
	}
	return removed, nil
}

// Reorder moves a child to target, shifting the siblings in between.
// It reports whether anything changed.
func Reorder(ctx context.Context, s Store, ownerID, childID uint, target int) (bool, error) {
	children, err := s.ListChildren(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to list children: %w", err)
	}
	if err := Validate(children); err != nil {
		return false, err
	}

	moves, err := PlanReorder(children, childID, target)
	if err != nil {
		return false, err
	}
	if len(moves) == 0 {
		return false, nil
	}

	if err := Validate(Apply(children, moves)); err != nil {
		return false, err
	}
	if err := s.UpdatePositions(ctx, ownerID, moves); err != nil {
		return false, fmt.Errorf("failed to reorder children: %w", err)
	}

	if err := verify(ctx, s, ownerID); err != nil {
		return false, err
	}
	return true, nil
}

// verify re-reads the collection after a write so the caller's
// transaction aborts if the stored ordering is not dense
func verify(ctx context.Context, s Store, ownerID uint) error {
	children, err := s.ListChildren(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list children: %w", err)
	}
	return Validate(children)
}

func find(children []models.Child, id uint) *models.Child {
	for i := range children {
		if children[i].ID == id {
			c := children[i]
			return &c
		}
	}
	return nil
}

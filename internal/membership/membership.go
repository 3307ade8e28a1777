// Package membership brings a board's participant list in line with a
// desired list supplied by the board owner.
package membership

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
)

// Desired is one entry of the requested participant list.
type Desired struct {
	UserID uint64
	Role   models.Role
}

// Plan is the set of writes needed to reach the desired list.
type Plan struct {
	Remove []models.BoardParticipant
	Update []models.BoardParticipant // carries the new role
	Add    []models.BoardParticipant
}

func (p Plan) Empty() bool {
	return len(p.Remove) == 0 && len(p.Update) == 0 && len(p.Add) == 0
}

// Diff compares current participants with desired, ignoring the owner on
// both sides. Output order follows user id so plans are deterministic.
func Diff(current []models.BoardParticipant, ownerID uint64, desired []Desired) Plan {
	want := make(map[uint64]models.Role, len(desired))
	for _, d := range desired {
		if d.UserID == ownerID {
			continue
		}
		want[d.UserID] = d.Role
	}

	var plan Plan
	have := make(map[uint64]struct{}, len(current))
	for _, p := range current {
		if p.UserID == ownerID {
			continue
		}
		have[p.UserID] = struct{}{}

		role, ok := want[p.UserID]
		switch {
		case !ok:
			plan.Remove = append(plan.Remove, p)
		case role != p.Role:
			p.Role = role
			plan.Update = append(plan.Update, p)
		}
	}

	for userID, role := range want {
		if _, ok := have[userID]; ok {
			continue
		}
		plan.Add = append(plan.Add, models.BoardParticipant{UserID: userID, Role: role})
	}

	sortByUser(plan.Remove)
	sortByUser(plan.Update)
	sortByUser(plan.Add)
	return plan
}

func sortByUser(ps []models.BoardParticipant) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].UserID < ps[j].UserID })
}

// Validate rejects missing ids and roles other than writer or reader. A user
// listed twice is a conflict.
func Validate(ownerID uint64, desired []Desired) error {
	seen := make(map[uint64]struct{}, len(desired))
	for _, d := range desired {
		if d.UserID == 0 {
			return fmt.Errorf("%w: participant user id is required", apierrors.ErrKindValidation)
		}
		if _, dup := seen[d.UserID]; dup {
			return fmt.Errorf("%w: user %d is listed more than once", apierrors.ErrKindConflict, d.UserID)
		}
		seen[d.UserID] = struct{}{}

		if d.UserID == ownerID {
			continue
		}
		if d.Role != models.RoleWriter && d.Role != models.RoleReader {
			return fmt.Errorf("%w: role %q is not assignable, use writer or reader", apierrors.ErrKindValidation, d.Role)
		}
	}
	return nil
}

// Reconcile applies the diff between the board's participants and desired,
// and the new title when given, in one transaction.
func Reconcile(ctx context.Context, store repository.Store, board *models.Board, ownerID uint64, desired []Desired, title *string) (Plan, error) {
	if err := Validate(ownerID, desired); err != nil {
		return Plan{}, err
	}
	if err := ensureUsersExist(ctx, store, ownerID, desired); err != nil {
		return Plan{}, err
	}

	var plan Plan
	err := store.Atomic(ctx, func(tx repository.Store) error {
		boards := tx.Boards()

		current, err := boards.ListParticipants(ctx, board.ID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}

		plan = Diff(current, ownerID, desired)

		if len(plan.Remove) > 0 {
			ids := make([]uint64, len(plan.Remove))
			for i, p := range plan.Remove {
				ids[i] = p.UserID
			}
			if err := boards.RemoveParticipants(ctx, board.ID, ids); err != nil {
				return fmt.Errorf("failed to remove participants: %w", err)
			}
		}

		for _, p := range plan.Update {
			if err := boards.UpdateParticipantRole(ctx, p.ID, p.Role); err != nil {
				return fmt.Errorf("failed to update participant role: %w", err)
			}
		}

		if len(plan.Add) > 0 {
			for i := range plan.Add {
				plan.Add[i].BoardID = board.ID
			}
			if err := boards.AddParticipants(ctx, plan.Add); err != nil {
				if errors.Is(err, repository.ErrParticipantExists) {
					return err
				}
				return fmt.Errorf("failed to add participants: %w", err)
			}
		}

		if title != nil && *title != board.Title {
			if err := boards.UpdateTitle(ctx, board.ID, *title); err != nil {
				return fmt.Errorf("failed to update board title: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Plan{}, err
	}

	if title != nil {
		board.Title = *title
	}
	return plan, nil
}

func ensureUsersExist(ctx context.Context, store repository.Store, ownerID uint64, desired []Desired) error {
	ids := make([]uint64, 0, len(desired))
	for _, d := range desired {
		if d.UserID != ownerID {
			ids = append(ids, d.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := store.Users().ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to look up users: %w", err)
	}

	known := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unknown users: %s", apierrors.ErrKindValidation, strings.Join(missing, ", "))
	}
	return nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/policy"
)

var (
	ErrBoardNotFound    = fmt.Errorf("%w: board not found", apierrors.ErrKindNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category not found", apierrors.ErrKindNotFound)
	ErrGoalNotFound     = fmt.Errorf("%w: goal not found", apierrors.ErrKindNotFound)
	ErrCommentNotFound  = fmt.Errorf("%w: comment not found", apierrors.ErrKindNotFound)

	// Parent references in create requests are validated like any other field.
	ErrParentBoardNotFound    = fmt.Errorf("%w: board does not exist", apierrors.ErrKindValidation)
	ErrParentCategoryNotFound = fmt.Errorf("%w: category does not exist", apierrors.ErrKindValidation)
	ErrParentGoalNotFound     = fmt.Errorf("%w: goal does not exist", apierrors.ErrKindValidation)

	ErrNotBoardOwner     = fmt.Errorf("%w: only the board owner can change or delete the board", apierrors.ErrKindForbidden)
	ErrReadOnlyRole      = fmt.Errorf("%w: only owners and writers can change this object", apierrors.ErrKindForbidden)
	ErrNotCommentAuthor  = fmt.Errorf("%w: only the author can change this comment", apierrors.ErrKindForbidden)
	ErrTitleRequired     = fmt.Errorf("%w: title is required", apierrors.ErrKindValidation)
	ErrTextRequired      = fmt.Errorf("%w: text is required", apierrors.ErrKindValidation)
	ErrInvalidGoalStatus = fmt.Errorf("%w: unknown goal status", apierrors.ErrKindValidation)
	ErrInvalidPriority   = fmt.Errorf("%w: unknown goal priority", apierrors.ErrKindValidation)
)

// normalizeTitle trims title and checks it against max runes.
func normalizeTitle(title string, max int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > max {
		return "", fmt.Errorf("%w: title must be at most %d characters", apierrors.ErrKindValidation, max)
	}
	return title, nil
}

// lookupError translates a missing row into notFound and wraps anything else.
func lookupError(err, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

// readError hides objects the caller may not read behind notFound.
func readError(err, notFound error) error {
	if errors.Is(err, policy.ErrForbidden) {
		return notFound
	}
	return err
}

// writeError replaces the generic policy denial with a message for the kind.
func writeError(err, denied error) error {
	if errors.Is(err, policy.ErrForbidden) {
		return denied
	}
	return err
}

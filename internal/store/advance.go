package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/joescharf/civic/internal/models"
)

// ErrNoNextStage is returned when advancing an issue that is already resolved
// or whose declared stage is unknown.
var ErrNoNextStage = errors.New("no next stage")

// Advance moves the issue to the stage after its declared one, recording a
// timeline event. An empty description defaults to "Moved to <stage label>".
func Advance(ctx context.Context, s Store, id, description, timestamp string) (*models.Issue, error) {
	if _, err := s.AdvanceIssue(ctx, id, description, timestamp); err != nil {
		if errors.Is(err, ErrNoNextStage) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("advance issue: %w", err)
	}
	return s.GetIssue(ctx, id)
}

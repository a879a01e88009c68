package collector

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
)

type Result[T any] struct {
	Result T
	Err    error
}

type Collector[T any] interface {
	Collect(ctx context.Context) (<-chan Result[T], error)
}

// Batch is the normalized output of one (game, source) fetch.
type Batch struct {
	Game          domain.Game
	Source        string
	Announcements []domain.Announcement
}

// SourceError reports a failed fetch without aborting the collection.
type SourceError struct {
	Game   string
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Game, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/mdboard/internal/domain"
)

// LoadBoardInput contains the parameters for loading the board.
type LoadBoardInput struct {
	Refresh bool // Discard the cached board and reload from the store
}

// LoadBoardOutput contains the result of loading the board.
type LoadBoardOutput struct {
	Board *domain.Board
}

// LoadBoard is the use case for reading the board through the cache.
type LoadBoard struct {
	reader domain.BoardReader
	cache  domain.BoardCache
	key    string
}

// NewLoadBoard creates a new LoadBoard use case.
func NewLoadBoard(reader domain.BoardReader, cache domain.BoardCache, key string) *LoadBoard {
	return &LoadBoard{
		reader: reader,
		cache:  cache,
		key:    key,
	}
}

// Execute returns the cached board when fresh, otherwise loads it.
func (uc *LoadBoard) Execute(ctx context.Context, in LoadBoardInput) (*LoadBoardOutput, error) {
	if in.Refresh {
		if err := uc.cache.Invalidate(ctx, uc.key); err != nil {
			return nil, fmt.Errorf("invalidate board: %w", err)
		}
	}

	board, err := uc.cache.Fetch(ctx, uc.key, uc.reader.LoadBoard)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}

	return &LoadBoardOutput{Board: board}, nil
}

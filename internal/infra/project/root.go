// Package project locates the project a board belongs to.
package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/runoshun/mdboard/internal/domain"
)

// Root describes the project directory a board lives in.
type Root struct {
	Dir      string // Project root (worktree root inside a git repository)
	BoardDir string // <Dir>/.mdboard
	InRepo   bool   // Whether Dir is a git worktree
}

// Detect finds the project root for dir.
// Inside a git repository the worktree root is used, so running from a
// subdirectory finds the same board. Outside one, dir itself is the root.
func Detect(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return newRoot(abs, false), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return newRoot(abs, false), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return newRoot(wt.Filesystem.Root(), true), nil
}

func newRoot(dir string, inRepo bool) *Root {
	return &Root{
		Dir:      dir,
		BoardDir: domain.ProjectBoardDir(dir),
		InRepo:   inRepo,
	}
}

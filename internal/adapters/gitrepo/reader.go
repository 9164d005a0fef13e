// Package gitrepo reads commit metadata from a git repository. This is
// the only git surface the gate has: it reads the HEAD commit message so
// the commit validator can parse the declared trailers. All other git
// plumbing stays outside the core.
package gitrepo

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"

	"github.com/example/wicket/internal/ports/secondary"
)

// Reader implements secondary.CommitReader over go-git.
type Reader struct{}

// NewReader creates a commit metadata reader.
func NewReader() *Reader {
	return &Reader{}
}

// HeadMessage returns the full message of the repository's HEAD commit.
func (r *Reader) HeadMessage(ctx context.Context, repoPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open git repository at %s: %w", repoPath, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD commit: %w", err)
	}

	return commit.Message, nil
}

// Ensure Reader implements the interface
var _ secondary.CommitReader = (*Reader)(nil)

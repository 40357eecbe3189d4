// Package vcs reads the revision of the project being built.
package vcs

import (
	"errors"
	"log/slog"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// Revision returns the commit hash HEAD points to in the repository that
// contains dir. It returns "" when dir is not inside a repository or the
// repository has no commits yet.
func Revision(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Warn("Failed to open git repository", logfields.Path(dir), logfields.Error(err))
		}
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		slog.Debug("Repository has no HEAD", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return ref.Hash().String()
}

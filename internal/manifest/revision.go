package manifest

import (
	"errors"

	ggit "github.com/go-git/go-git/v5"
)

// SourceRevision returns the HEAD commit of the git repository containing
// dir. Projects outside a repository have no revision and return "".
func SourceRevision(dir string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, ggit.ErrRepositoryNotExists) {
			return "", nil
		}
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

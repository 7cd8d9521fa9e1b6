package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *BuildManifest {
	return &BuildManifest{
		ID:        "run-123",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Inputs: Inputs{
			Mode:       "production",
			BasePath:   "http://example.test/",
			CacheBust:  "1704110400000",
			ConfigHash: "abc",
			Revision:   "deadbeef",
		},
		Tasks: []Task{
			{Name: "clear-output", Result: "success", Duration: 3},
			{Name: "render-templates", Result: "warning", Duration: 12, Error: "missing.html: not found"},
		},
		Outputs: Outputs{Files: 42, PagesRendered: 3, PagesFailed: 1},
		Status:  "warning",
	}
}

func TestWriteRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := sampleManifest()
	require.NoError(t, Write(fs, "deploy", m))

	got, err := Read(fs, "deploy")
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestHashIgnoresCacheBust(t *testing.T) {
	a := sampleManifest()
	b := sampleManifest()
	b.Inputs.CacheBust = "1"
	b.ID = "other"

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Inputs.BasePath = "http://other.test/"
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestSourceRevision(t *testing.T) {
	dir := t.TempDir()
	rev, err := SourceRevision(dir)
	require.NoError(t, err)
	assert.Empty(t, rev)

	repo, err := ggit.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sitebuilder.yaml"), []byte("title: x\n"), 0o600))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("sitebuilder.yaml")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &ggit.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.test", When: time.Now()},
	})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sources"), 0o750))
	rev, err = SourceRevision(filepath.Join(dir, "sources"))
	require.NoError(t, err)
	assert.Equal(t, hash.String(), rev)
}

func TestHashFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.yaml", []byte("x"), 0o644))
	h, err := HashFile(fs, "a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881", h)
}

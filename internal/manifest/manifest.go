// Package manifest records what a build run produced. The manifest is
// written as a dot file in the output root and is skipped by promotion.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// FileName is the manifest's name inside the output root.
const FileName = ".sitebuilder-manifest.json"

// BuildManifest is the record of one completed run.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Inputs    Inputs    `json:"inputs"`
	Tasks     []Task    `json:"tasks"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures everything that determines the output.
type Inputs struct {
	Mode       string `json:"mode"`
	BasePath   string `json:"base_path"`
	CacheBust  string `json:"cache_bust"`
	ConfigHash string `json:"config_hash,omitempty"`
	Revision   string `json:"revision,omitempty"`
}

// Task is the outcome of one executed task.
type Task struct {
	Name     string `json:"name"`
	Result   string `json:"result"`
	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`
}

// Outputs summarizes what was written.
type Outputs struct {
	Files         int      `json:"files"`
	PagesRendered int      `json:"pages_rendered"`
	PagesFailed   int      `json:"pages_failed,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's inputs. Two runs
// with the same hash were built from the same configuration, revision and
// base path; the cache-bust value is excluded.
func (m *BuildManifest) Hash() (string, error) {
	in := m.Inputs
	in.CacheBust = ""
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal inputs: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Write stores m in outputDir.
func Write(fs afero.Fs, outputDir string, m *BuildManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(outputDir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads the manifest stored in outputDir.
func Read(fs afero.Fs, outputDir string) (*BuildManifest, error) {
	data, err := afero.ReadFile(fs, filepath.Join(outputDir, FileName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

// HashFile returns the hex sha256 of a file, used for the config hash.
func HashFile(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

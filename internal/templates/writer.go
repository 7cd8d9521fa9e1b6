package templates

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// writeOutput writes content to relativePath under outDir, creating parent
// directories. Existing files are overwritten.
func writeOutput(fs afero.Fs, outDir, relativePath, content string) (string, error) {
	if relativePath == "" {
		return "", errors.New("output path is required")
	}

	cleanRel := filepath.Clean(relativePath)
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return "", errors.New("output path must be relative to the output directory")
	}

	fullPath := filepath.Join(outDir, cleanRel)
	if err := fs.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := afero.WriteFile(fs, fullPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return fullPath, nil
}

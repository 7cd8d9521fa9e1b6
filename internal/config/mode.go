package config

import (
	"strings"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// BuildMode selects the set of transformations a run applies.
type BuildMode string

const (
	ModeDevelopment BuildMode = "development"
	ModeProduction  BuildMode = "production"
)

var buildModeAliases = map[string]BuildMode{
	"development": ModeDevelopment,
	"dev":         ModeDevelopment,
	"deploy":      ModeDevelopment,
	"production":  ModeProduction,
	"prod":        ModeProduction,
}

// ParseBuildMode normalizes a user supplied mode name (case and surrounding
// whitespace are ignored).
func ParseBuildMode(raw string) (BuildMode, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if m, ok := buildModeAliases[key]; ok {
		return m, nil
	}
	return "", ferrors.ValidationError("invalid build mode (valid: development, production)").
		WithContext("mode", raw).
		Build()
}

func (m BuildMode) String() string { return string(m) }

// IsProduction reports whether m is the production mode.
func (m BuildMode) IsProduction() bool { return m == ModeProduction }

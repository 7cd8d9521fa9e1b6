package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

type configurationValidator struct {
	config *ProjectConfig
}

func validateConfig(cfg *ProjectConfig) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

func (v *configurationValidator) validate() error {
	for _, check := range []func() error{
		v.validatePaths,
		v.validatePages,
		v.validateFragments,
		v.validateSprites,
		v.validateBundles,
		v.validateWatch,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *configurationValidator) validatePaths() error {
	p := v.config.Paths
	if p.BasePathLocal == "" {
		return invalid("paths.basePathLocal", "must be set")
	}
	if p.Source == p.Output {
		return invalid("paths.output", "must differ from paths.source")
	}
	if isWithin(p.Source, p.Output) {
		return invalid("paths.output", "must not contain paths.source")
	}
	return nil
}

func (v *configurationValidator) validatePages() error {
	seen := make(map[string]struct{}, len(v.config.Pages))
	for i, p := range v.config.Pages {
		if p.File == "" {
			return invalid(fmt.Sprintf("pages[%d].file", i), "must be set")
		}
		if filepath.IsAbs(p.File) || strings.HasPrefix(filepath.Clean(p.File), "..") {
			return invalid(fmt.Sprintf("pages[%d].file", i), "must be relative to the site directory")
		}
		if _, dup := seen[p.File]; dup {
			return invalid(fmt.Sprintf("pages[%d].file", i), "duplicate page "+p.File)
		}
		seen[p.File] = struct{}{}
		for j, r := range p.Replace {
			if r.Find == "" {
				return invalid(fmt.Sprintf("pages[%d].replace[%d].find", i, j), "must be set")
			}
		}
	}
	return nil
}

func (v *configurationValidator) validateFragments() error {
	seen := make(map[string]struct{}, len(v.config.Fragments))
	for i, f := range v.config.Fragments {
		if f.Path == "" {
			return invalid(fmt.Sprintf("fragments[%d].path", i), "must be set")
		}
		if strings.ContainsAny(f.Name, "{}") {
			return invalid(fmt.Sprintf("fragments[%d].name", i), "must not contain braces")
		}
		if _, dup := seen[f.Name]; dup {
			return invalid(fmt.Sprintf("fragments[%d].name", i), "duplicate fragment "+f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func (v *configurationValidator) validateSprites() error {
	for i, s := range v.config.Sprites {
		if s.Src == "" || s.Dest == "" || s.DestCSS == "" {
			return invalid(fmt.Sprintf("sprites[%d]", i), "src, dest and destCss must be set")
		}
	}
	return nil
}

func (v *configurationValidator) validateBundles() error {
	check := func(kind string, groups []FileGroup) error {
		for i, g := range groups {
			if g.Dest == "" {
				return invalid(fmt.Sprintf("%s.files[%d].dest", kind, i), "must be set")
			}
			if len(g.Src) == 0 {
				return invalid(fmt.Sprintf("%s.files[%d].src", kind, i), "must list at least one source")
			}
		}
		return nil
	}
	if err := check("scripts", v.config.Scripts.Files); err != nil {
		return err
	}
	return check("styles", v.config.Styles.Files)
}

func (v *configurationValidator) validateWatch() error {
	if _, err := time.ParseDuration(v.config.Watch.Debounce); err != nil {
		return invalid("watch.debounce", err.Error())
	}
	if _, err := time.ParseDuration(v.config.Watch.MaxDelay); err != nil {
		return invalid("watch.maxDelay", err.Error())
	}
	if v.config.Server.Port < 0 || v.config.Server.Port > 65535 {
		return invalid("server.port", "out of range")
	}
	return nil
}

func invalid(field, reason string) error {
	return ferrors.ConfigError(fmt.Sprintf("invalid %s: %s", field, reason)).
		WithContext("field", field).
		Build()
}

// isWithin reports whether child is parent or lies beneath it.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

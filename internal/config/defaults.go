package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *ProjectConfig) error
	Domain() string
}

type pathsDefaultApplier struct{}

func (pathsDefaultApplier) Domain() string { return "paths" }

func (pathsDefaultApplier) ApplyDefaults(cfg *ProjectConfig) error {
	if cfg.Paths.Source == "" {
		cfg.Paths.Source = "sources"
	}
	if cfg.Paths.Output == "" {
		cfg.Paths.Output = "deploy"
	}
	if cfg.Paths.Root == "" {
		cfg.Paths.Root = "."
	}
	cfg.Paths.Source = filepath.Clean(cfg.Paths.Source)
	cfg.Paths.Output = filepath.Clean(cfg.Paths.Output)
	cfg.Paths.Root = filepath.Clean(cfg.Paths.Root)
	return nil
}

type spritesDefaultApplier struct{}

func (spritesDefaultApplier) Domain() string { return "sprites" }

func (spritesDefaultApplier) ApplyDefaults(cfg *ProjectConfig) error {
	for i := range cfg.Sprites {
		s := &cfg.Sprites[i]
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(s.Dest), filepath.Ext(s.Dest))
		}
		if s.ImgPath == "" && s.Dest != "" {
			s.ImgPath = "{{{CDN_BASEPATH}}}" + filepath.ToSlash(s.Dest)
		}
		if s.Padding < 0 {
			s.Padding = 0
		}
	}
	return nil
}

type imagesDefaultApplier struct{}

func (imagesDefaultApplier) Domain() string { return "images" }

func (imagesDefaultApplier) ApplyDefaults(cfg *ProjectConfig) error {
	if cfg.Images.JPEGQuality <= 0 || cfg.Images.JPEGQuality > 100 {
		cfg.Images.JPEGQuality = 85
	}
	return nil
}

type watchDefaultApplier struct{}

func (watchDefaultApplier) Domain() string { return "watch" }

func (watchDefaultApplier) ApplyDefaults(cfg *ProjectConfig) error {
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = "300ms"
	}
	if cfg.Watch.MaxDelay == "" {
		cfg.Watch.MaxDelay = "2s"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8888
	}
	return nil
}

type fragmentsDefaultApplier struct{}

func (fragmentsDefaultApplier) Domain() string { return "fragments" }

func (fragmentsDefaultApplier) ApplyDefaults(cfg *ProjectConfig) error {
	for i := range cfg.Fragments {
		if cfg.Fragments[i].Name == "" {
			cfg.Fragments[i].Name = cfg.Fragments[i].Path
		}
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		pathsDefaultApplier{},
		spritesDefaultApplier{},
		imagesDefaultApplier{},
		watchDefaultApplier{},
		fragmentsDefaultApplier{},
	}
}

func applyDefaults(cfg *ProjectConfig) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := ProjectConfig{
		Title: "My Site",
		Paths: PathsConfig{
			BasePathLocal:     "http://localhost:8888/",
			BaseURLProduction: "https://www.example.com/",
			Source:            "sources",
			Output:            "deploy",
			Root:              ".",
		},
		Sprites: []SpriteConfig{{
			Name:    "icons",
			Src:     "sources/assets/images/sprites/icons/*.png",
			Dest:    "assets/images/icons.png",
			DestCSS: "sources/assets/css/sprites/icons.css",
			Padding: 2,
		}},
		Scripts: ScriptsConfig{Files: []FileGroup{{
			Dest: "assets/scripts/main.js",
			Src:  []string{"sources/assets/scripts/vendor/*.js", "sources/assets/scripts/main.js"},
		}}},
		Styles: StylesConfig{Files: []FileGroup{{
			Dest: "assets/css/main.css",
			Src:  []string{"sources/assets/css/sprites/*.css", "sources/assets/css/main.css"},
		}}},
		Images: ImagesConfig{JPEGQuality: 85},
		Pages: []PageTemplate{
			{File: "index.html", Title: "Home"},
			{File: "about.html", Title: "About", Replace: []ReplaceRule{{Find: "lead", Replace: "Who we are"}}},
		},
		Fragments: []Fragment{
			{Name: "header", Path: "sources/site/_header.html"},
			{Name: "footer", Path: "sources/site/_footer.html"},
		},
		Watch:  WatchConfig{Debounce: "300ms", MaxDelay: "2s"},
		Server: ServerConfig{Port: 8888},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshal example: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

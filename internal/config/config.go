package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds viewer settings. Zero fields fall back to Defaults.
type Config struct {
	// AssetsDir holds models/ and textures/.
	AssetsDir string `yaml:"assets_dir"`
	// Model is a document path, or a name under AssetsDir/models.
	Model string `yaml:"model"`
	// TextureBaseURL prefixes texture paths served to viewers.
	TextureBaseURL string `yaml:"texture_base_url"`
	Listen         string `yaml:"listen"`
	// Output is where the exported scene is written; ".zst" compresses it.
	Output string `yaml:"output"`
	// DecodeTextures loads texture pixels in the background.
	DecodeTextures *bool `yaml:"decode_textures"`
	// Watch reloads the model whenever its file changes (serve mode).
	Watch *bool `yaml:"watch"`
	// Workers > 1 assembles blocks concurrently.
	Workers int `yaml:"workers"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	yes := true
	return Config{
		AssetsDir:      "./assets",
		TextureBaseURL: "/textures",
		Listen:         "127.0.0.1:8000",
		DecodeTextures: &yes,
		Watch:          &yes,
	}
}

// Load reads a YAML file on top of Defaults. A missing file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	c := Defaults()
	if path == "" {
		return c, c.expand()
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return c, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return c, c.expand()
	}
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	c.fillDefaults()
	return c, c.expand()
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if strings.TrimSpace(c.AssetsDir) == "" {
		c.AssetsDir = d.AssetsDir
	}
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = d.Listen
	}
	if c.DecodeTextures == nil {
		c.DecodeTextures = d.DecodeTextures
	}
	if c.Watch == nil {
		c.Watch = d.Watch
	}
}

func (c *Config) expand() error {
	for _, p := range []*string{&c.AssetsDir, &c.Model, &c.Output} {
		if *p == "" {
			continue
		}
		v, err := homedir.Expand(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

// TexturesDir is where texture files live.
func (c Config) TexturesDir() string {
	return filepath.Join(c.AssetsDir, "textures")
}

// ModelPath returns the document path when Model names a file, or "" when
// it should be looked up by name under AssetsDir/models.
func (c Config) ModelPath() string {
	if c.Model == "" {
		return ""
	}
	if filepath.IsAbs(c.Model) || strings.ContainsRune(c.Model, filepath.Separator) ||
		strings.HasSuffix(c.Model, ".json") || strings.HasSuffix(c.Model, ".zst") {
		if _, err := os.Stat(c.Model); err == nil {
			return c.Model
		}
	}
	return ""
}

// Compress reports whether Output should be zstd-compressed.
func (c Config) Compress() bool {
	return strings.HasSuffix(c.Output, ".zst")
}

// ShouldDecodeTextures and ShouldWatch read the optional switches; unset
// means on.
func (c Config) ShouldDecodeTextures() bool { return c.DecodeTextures == nil || *c.DecodeTextures }
func (c Config) ShouldWatch() bool          { return c.Watch == nil || *c.Watch }

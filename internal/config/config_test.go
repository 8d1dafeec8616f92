package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	d := Defaults()
	assert.Equal(t, d.AssetsDir, c.AssetsDir)
	assert.Equal(t, d.Listen, c.Listen)
	assert.True(t, c.ShouldDecodeTextures())
	assert.True(t, c.ShouldWatch())
	assert.False(t, c.Compress())
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blockview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assets_dir: /srv/assets
model: house
texture_base_url: /tex
output: scene.json.zst
decode_textures: false
workers: 4
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/assets", c.AssetsDir)
	assert.Equal(t, "house", c.Model)
	assert.Equal(t, "/tex", c.TextureBaseURL)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "127.0.0.1:8000", c.Listen)
	assert.False(t, c.ShouldDecodeTextures())
	assert.True(t, c.ShouldWatch())
	assert.True(t, c.Compress())
	assert.Equal(t, filepath.Join("/srv/assets", "textures"), c.TexturesDir())
	assert.Equal(t, "", c.ModelPath(), "a bare name is looked up under models/")
}

func TestLoadExpandsHome(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blockview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets_dir: ~/blocks\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "blocks"), c.AssetsDir)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets_dir: [unclosed\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestModelPath(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "house.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"regions":{}}`), 0o644))

	c := Defaults()
	c.Model = doc
	assert.Equal(t, doc, c.ModelPath())

	c.Model = filepath.Join(dir, "missing.json")
	assert.Equal(t, "", c.ModelPath())
}

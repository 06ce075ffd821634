package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10000.0, cfg.Mesh.Scale)
	assert.Equal(t, 10.0, cfg.Mesh.Depth)
	assert.Equal(t, 10.0, cfg.Label.Elevation)
	assert.Equal(t, 5.0, cfg.Label.Size)
	assert.Equal(t, "cp", cfg.Keys.Anchor)

	opts := cfg.SceneOptions()
	assert.Equal(t, 10000.0, opts.Scale)
	assert.Equal(t, 1.0, opts.Label.Depth)
	assert.Equal(t, "name", cfg.ParseOptions().NameKey)
}

func TestLoadConfigXML(t *testing.T) {
	path := writeConfig(t, `<config>
  <listen>:9000</listen>
  <mesh><scale>5000</scale><depth>4</depth></mesh>
  <label><elevation>6</elevation><transliterate>false</transliterate></label>
  <keys><name>NAME</name></keys>
</config>`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 5000.0, cfg.Mesh.Scale)
	assert.Equal(t, 4.0, cfg.Mesh.Depth)
	assert.Equal(t, 1.0, cfg.Mesh.EdgeThreshold)
	assert.Equal(t, 6.0, cfg.Label.Elevation)
	assert.False(t, cfg.Label.Transliterate)
	assert.Equal(t, "NAME", cfg.Keys.Name)
	assert.Equal(t, "cp", cfg.Keys.Anchor)
	assert.Equal(t, cfg, MainConfig)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, `<config><mesh><scale>5000</scale></mesh></config>`)
	t.Setenv("GEOMESH_MESH_SCALE", "2500")
	t.Setenv("GEOMESH_LABEL_FONT", "/fonts/simhei.ttf")
	t.Setenv("GEOMESH_WORKERS", "3")
	t.Setenv("GEOMESH_LABEL_TRANSLITERATE", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.Mesh.Scale)
	assert.Equal(t, "/fonts/simhei.ttf", cfg.Label.Font)
	assert.Equal(t, 3, cfg.Workers)
	assert.False(t, cfg.Label.Transliterate)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.xml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Mesh, cfg.Mesh)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `<config><mesh>`))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `<config><mesh><scale>-1</scale></mesh></config>`))
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Label.Elevation = 2
	cfg.Mesh.Depth = 0
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidDepth)

	cfg = DefaultConfig()
	cfg.Label.Elevation = 5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidElevation)

	cfg = DefaultConfig()
	cfg.Label.Size = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidLabel)
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), DBFileName), logger.Silent)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("scenes"))
	assert.True(t, db.Migrator().HasTable("scene_nodes"))

	dir := filepath.Join(t.TempDir(), "nested")
	db, err = InitDatabase(dir)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("scenes"))
	assert.FileExists(t, filepath.Join(dir, DBFileName))
}

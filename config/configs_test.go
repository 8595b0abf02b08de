package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.xml"))
	require.NoError(t, err)
	assert.Equal(t, 27700, cfg.EPSG)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, 200.0, cfg.OutputWidthMM)
	assert.Equal(t, "UTF-8", cfg.DBFEncoding)
}

func TestLoadXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<config>
  <MainRouter>:9000</MainRouter>
  <epsg>27700</epsg>
  <targetEpsg>4326</targetEpsg>
  <dbfEncoding>GBK</dbfEncoding>
  <apiKey>abc</apiKey>
  <cacheTtl>5</cacheTtl>
</config>`), 0644))

	t.Setenv("SITEMEASURE_API_KEY", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.MainRouter)
	assert.Equal(t, 4326, cfg.TargetEPSG)
	assert.Equal(t, "GBK", cfg.DBFEncoding)
	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, 5.0, cfg.CacheDuration().Seconds())
	assert.Equal(t, *cfg, MainConfig)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("SITEMEASURE_API_KEY", "from-env")
	var cfg Config
	cfg.Defaults()
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestOpenSQLite(t *testing.T) {
	cfg := &Config{Download: t.TempDir()}
	cfg.Defaults()
	db, err := OpenDB(cfg)
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.FileExists(t, filepath.Join(cfg.Download, "sitemeasure.db"))
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := &Config{Driver: "oracle"}
	cfg.Defaults()
	_, err := OpenDB(cfg)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Catalog.BaseURL != nil || cfg.Search.PageSize != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[catalog]
base-url = "https://example.test/data"
liberal-arts = "ge.json"
cache-ttl = "12h"
timeout = "5s"

[search]
page-size = 50

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Catalog.BaseURL == nil || *cfg.Catalog.BaseURL != "https://example.test/data" {
		t.Fatalf("unexpected base-url: %v", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.Majors != nil || cfg.Catalog.LiberalArts == nil || *cfg.Catalog.LiberalArts != "ge.json" {
		t.Fatalf("unexpected collection paths: %+v", cfg.Catalog)
	}
	if cfg.Catalog.CacheTTL == nil || cfg.Catalog.CacheTTL.Duration != 12*time.Hour {
		t.Fatalf("unexpected cache-ttl: %v", cfg.Catalog.CacheTTL)
	}
	if cfg.Catalog.Timeout == nil || cfg.Catalog.Timeout.Duration != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Catalog.Timeout)
	}
	if cfg.Search.PageSize == nil || *cfg.Search.PageSize != 50 {
		t.Fatalf("unexpected page-size: %v", cfg.Search.PageSize)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" || cfg.Log.Format != nil {
		t.Fatalf("unexpected log section: %+v", cfg.Log)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"duration": "[catalog]\ncache-ttl = \"soon\"\n",
		"unknown":  "[search]\npage = 10\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name+".toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))

	checks := map[string]string{
		DefaultConfigPath(): filepath.Join(root, "config", "tuitable", "config.toml"),
		DefaultCachePath():  filepath.Join(root, "cache", "tuitable", "catalog.db"),
		DefaultLogPath():    filepath.Join(root, "state", "tuitable", "tuitable.log"),
	}
	for got, want := range checks {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if !strings.HasSuffix(XDGStateHome(), "state") {
		t.Fatalf("unexpected state home %s", XDGStateHome())
	}
}

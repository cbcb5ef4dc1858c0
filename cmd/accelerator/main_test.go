package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/always-cache/accelerator/config"
)

const testConfig = `
listen: ":9090"
origin: http://localhost:3000
rules:
  - prefix: /static/
    default: max-age=3600
  - path: /
    override: max-age=60
accelerator:
  storage:
    type: sqlite
    filename: cache.db
  policy:
    always_vary_on_headers: Cookie Accept-Encoding
`

func TestReadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(filename, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := readConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9090" || cfg.Origin != "http://localhost:3000" {
		t.Fatalf("Config is %+v", cfg)
	}
	if len(cfg.Rules) != 2 || cfg.Rules[0].Default != "max-age=3600" || cfg.Rules[1].Path != "/" {
		t.Fatalf("Rules are %+v", cfg.Rules)
	}

	settings := config.Flatten(cfg.Accelerator)
	if typ := settings.String("storage.type", ""); typ != "sqlite" {
		t.Fatalf("storage.type is '%s'", typ)
	}
	if vary := settings.List("policy.always_vary_on_headers", nil); len(vary) != 2 || vary[1] != "Accept-Encoding" {
		t.Fatalf("always_vary_on_headers is %v", vary)
	}
}

func TestReadConfigMissing(t *testing.T) {
	if _, err := readConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

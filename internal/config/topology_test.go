package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTopologyContainerNameOverridesServiceKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docker-compose.yaml")
	contents := `
services:
  cache:
    container_name: redis-primary
  api:
    image: api:latest
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write topology: %v", err)
	}

	topo, err := LoadTopology(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !topo.Known("redis-primary") {
		t.Fatal("expected container_name to be known")
	}
	if topo.Known("cache") {
		t.Fatal("service key should not be known when container_name overrides it")
	}
	if !topo.Known("api") {
		t.Fatal("expected service key to be known when container_name absent")
	}
}

func TestLoadTopologyMissingFile(t *testing.T) {
	if _, err := LoadTopology(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing topology file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBool(t *testing.T) {
	s := Settings{"a": "Yes", "b": "t", "c": "no", "d": true, "e": "1", "f": false}
	for key, want := range map[string]bool{"a": true, "b": true, "c": false, "d": true, "e": false, "f": false} {
		if got := s.Bool(key, !want); got != want {
			t.Fatalf("%s is %v", key, got)
		}
	}
	if !s.Bool("missing", true) {
		t.Fatal("Default not used")
	}
}

func TestList(t *testing.T) {
	s := Settings{"str": " GET  HEAD ", "list": []any{"Cookie", "Accept"}}
	if l := s.List("str", nil); len(l) != 2 || l[0] != "GET" || l[1] != "HEAD" {
		t.Fatalf("List is %v", l)
	}
	if l := s.List("list", nil); len(l) != 2 || l[1] != "Accept" {
		t.Fatalf("List is %v", l)
	}
	if l := s.List("missing", []string{"REQUEST_METHOD"}); len(l) != 1 {
		t.Fatalf("List is %v", l)
	}
	if l := (Settings{"empty": ""}).List("empty", []string{"x"}); len(l) != 0 {
		t.Fatalf("Empty string should give an empty list, got %v", l)
	}
}

func TestInt(t *testing.T) {
	s := Settings{"a": 3, "b": "4", "c": "x"}
	if i, err := s.Int("a", 0); err != nil || i != 3 {
		t.Fatalf("a is %d (%v)", i, err)
	}
	if i, err := s.Int("b", 0); err != nil || i != 4 {
		t.Fatalf("b is %d (%v)", i, err)
	}
	if _, err := s.Int("c", 0); err == nil {
		t.Fatal("c should not parse")
	}
}

func TestParseFlattens(t *testing.T) {
	s, err := Parse([]byte(`
policy:
  allowed_methods: GET HEAD
  honor_shift_reload: true
storage.type: sqlite
storage:
  filename: cache.db
`))
	if err != nil {
		t.Fatal(err)
	}
	if v := s.String("policy.allowed_methods", ""); v != "GET HEAD" {
		t.Fatalf("policy.allowed_methods is %s", v)
	}
	if !s.Bool("policy.honor_shift_reload", false) {
		t.Fatal("policy.honor_shift_reload should be true")
	}
	if v := s.String("storage.type", ""); v != "sqlite" {
		t.Fatalf("storage.type is %s", v)
	}
	if v := s.Sub("storage").String("filename", ""); v != "cache.db" {
		t.Fatalf("storage.filename is %s", v)
	}
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(filename, []byte("logger:\n  log_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if v := s.String("logger.log_level", ""); v != "debug" {
		t.Fatalf("logger.log_level is %s", v)
	}
	if _, err := Load(filename + ".missing"); err == nil {
		t.Fatal("Loading a missing file should fail")
	}
}

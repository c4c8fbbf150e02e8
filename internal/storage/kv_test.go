package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gaurav-Gosain/dashpanel/internal/storage"
)

func backends(t *testing.T) map[string]storage.KV {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := storage.NewFileKV(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	db, err := storage.NewSQLiteKV(ctx, filepath.Join(dir, "layout.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]storage.KV{
		"memory": storage.NewMemoryKV(),
		"json":   file,
		"sqlite": db,
	}
}

func TestKVBackends(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, "panelState"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("Get on empty store error = %v, want ErrNotFound", err)
			}

			if err := kv.Set(ctx, "panelState", `{"a":1}`); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set(ctx, "panelState", `{"a":2}`); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			if err := kv.Set(ctx, "panelOrder", `["a"]`); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := kv.Get(ctx, "panelState")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != `{"a":2}` {
				t.Errorf("Get = %q, want overwritten value", got)
			}

			if err := kv.Delete(ctx, "panelState", "never-written"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := kv.Get(ctx, "panelState"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
			}
			if v, err := kv.Get(ctx, "panelOrder"); err != nil || v != `["a"]` {
				t.Errorf("untouched key = %q, %v", v, err)
			}
		})
	}
}

func TestFileKVCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	kv, err := storage.NewFileKV(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Get(ctx, "panelState"); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get on corrupt file error = %v, want a parse error", err)
	}

	if err := kv.Set(ctx, "panelOrder", `["a"]`); err != nil {
		t.Fatalf("Set should replace a corrupt file: %v", err)
	}
	if v, err := kv.Get(ctx, "panelOrder"); err != nil || v != `["a"]` {
		t.Errorf("Get after repair = %q, %v", v, err)
	}
}

func TestSQLiteKVReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "layout.db")

	db, err := storage.NewSQLiteKV(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Set(ctx, "presets", "[]"); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = storage.NewSQLiteKV(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if v, err := db.Get(ctx, "presets"); err != nil || v != "[]" {
		t.Errorf("Get after reopen = %q, %v", v, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    storage.Options
		wantErr bool
	}{
		{name: "json", opts: storage.Options{Backend: "json", Path: filepath.Join(dir, "a.json")}},
		{name: "sqlite", opts: storage.Options{Backend: "SQLite", Path: filepath.Join(dir, "a.db")}},
		{name: "memory", opts: storage.Options{Backend: "memory"}},
		{name: "unknown", opts: storage.Options{Backend: "redis"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := storage.Open(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open error = %v, wantErr %v", err, tt.wantErr)
			}
			if kv != nil {
				_ = kv.Close()
			}
		})
	}
}

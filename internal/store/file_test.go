package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackend_PutGet(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	fb, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}

	if _, found, err := fb.Get(ctx, KeySnapshot); err != nil || found {
		t.Fatalf("Get() on empty dir = found %v, err %v", found, err)
	}

	if err := fb.Put(ctx, KeySnapshot, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := fb.Put(ctx, KeySnapshot, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, found, err := fb.Get(ctx, KeySnapshot)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("Get() = %q, want %q", got, `{"a":2}`)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "marketData.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v, want [marketData.json]", names)
	}
}

func TestFileBackend_InvalidKey(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		if err := fb.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Put(%q) expected error", key)
		}
	}
}

func TestFileBackend_Closed(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	fb.Close()

	if err := fb.Put(context.Background(), KeyPinned, []byte("[]")); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after Close = %v, want ErrClosed", err)
	}
	if _, _, err := fb.Get(context.Background(), KeyPinned); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after Close = %v, want ErrClosed", err)
	}
}

func TestFileBackend_StoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fb, _ := NewFileBackend(dir)
	st := New(fb, nil)
	if err := st.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	st.Close()

	fb2, _ := NewFileBackend(dir)
	st2 := New(fb2, nil)
	snap, ok := st2.LoadSnapshot(ctx)
	if !ok {
		t.Fatal("snapshot should survive reopening the directory")
	}
	if len(snap.Records) != 3 {
		t.Errorf("len(Records) = %d, want 3", len(snap.Records))
	}

	// Corrupt the file on disk: the store degrades to absent.
	if err := os.WriteFile(filepath.Join(dir, "marketData.json"), []byte("{{{"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, ok := st2.LoadSnapshot(ctx); ok {
		t.Error("corrupt file should load as absent")
	}
}

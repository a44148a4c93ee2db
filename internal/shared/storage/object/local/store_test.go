package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	store := New(t.TempDir())

	body := "mzML payload"
	key, size, mimeType, err := store.Save(context.Background(), "raw", "run42.mzML", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "raw/") {
		t.Fatalf("expected key under raw/, got %q", key)
	}
	if !strings.HasSuffix(key, "_run42.mzML") {
		t.Fatalf("expected key to keep file name, got %q", key)
	}
	if size != int64(len(body)) {
		t.Fatalf("expected size %d, got %d", len(body), size)
	}
	if mimeType == "" {
		t.Fatalf("expected a detected mime type")
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(got) != body {
		t.Fatalf("round trip mismatch: got %q want %q", got, body)
	}
}

func TestSaveUniqueKeys(t *testing.T) {
	store := New(t.TempDir())

	key1, _, _, err := store.Save(context.Background(), "raw", "run.mzML", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	key2, _, _, err := store.Save(context.Background(), "raw", "run.mzML", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if key1 == key2 {
		t.Fatalf("expected distinct keys for repeated uploads, got %q twice", key1)
	}
}

func TestSaveRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())

	if _, _, _, err := store.Save(context.Background(), "raw", "../escape.mzML", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for traversal in file name")
	}
	if _, _, _, err := store.Save(context.Background(), "../raw", "run.mzML", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for traversal in namespace")
	}
}

func TestOpenRejectsInvalidKeys(t *testing.T) {
	store := New(t.TempDir())

	for _, key := range []string{"../outside", "/etc/passwd"} {
		if _, err := store.Open(context.Background(), key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestSaveCancelledContext(t *testing.T) {
	store := New(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, _, err := store.Save(ctx, "raw", "run.mzML", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

package storage

import (
	"bytes"
	"context"
	"testing"
)

func TestFileStoreWriteReadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "renders/job-1/concept.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "renders/job-1/concept.png" {
		t.Fatalf("key = %q", key)
	}

	data, err := store.Read(context.Background(), key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(data, []byte("png-bytes")) {
		t.Fatalf("data = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, key := range []string{"", ".", "../escape", "a/../../escape"} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("Write(%q) should have been rejected", key)
		}
	}
}

func TestSanitizeKeyNormalizes(t *testing.T) {
	got, err := sanitizeKey(`./renders\job-1\concept.png`)
	if err != nil {
		t.Fatalf("sanitizeKey: %v", err)
	}
	if got != "renders/job-1/concept.png" {
		t.Fatalf("sanitizeKey = %q", got)
	}
}

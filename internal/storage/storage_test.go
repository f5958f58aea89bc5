package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndDelete(t *testing.T) {
	store := NewLocal(t.TempDir())

	ref, err := store.Save([]byte("image bytes"), "posts", ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Dir(ref) != "posts" {
		t.Errorf("Reference not rooted in folder: %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(store.Root, filepath.FromSlash(ref)))
	if err != nil {
		t.Fatalf("Saved blob unreadable: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("Blob content mismatch")
	}

	if err := store.Delete(ref); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root, filepath.FromSlash(ref))); !os.IsNotExist(err) {
		t.Errorf("Blob still present after delete")
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	store := NewLocal(t.TempDir())

	if err := store.Delete("../outside.txt"); err == nil {
		t.Error("Traversal reference accepted")
	}
	if err := store.Delete("/etc/passwd"); err == nil {
		t.Error("Absolute reference accepted")
	}
}

package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a.png", want: "a.png"},
		{in: "/nested/b.png", want: "nested/b.png"},
		{in: "./c.png", want: "c.png"},
		{in: `dir\d.png`, want: "dir/d.png"},
		{in: "../escape.png", wantErr: true},
		{in: "..", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := sanitizeKey(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) expected error, got %q", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWriteAndRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key, err := store.Write(ctx, "/x.png", []byte("png"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "x.png" {
		t.Fatalf("Write key = %q, want %q", key, "x.png")
	}
	data, err := store.Read(ctx, "x.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "png" {
		t.Fatalf("Read = %q, want %q", data, "png")
	}
	if _, err := store.Read(ctx, "missing.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Read missing err = %v, want fs.ErrNotExist", err)
	}
}

func TestStageCommit(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	staged, err := store.Stage(context.Background(), "processed-1.png", []byte("img"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if store.Exists("processed-1.png") {
		t.Fatalf("staged file visible before commit")
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !store.Exists("processed-1.png") {
		t.Fatalf("committed file missing")
	}
	if err := staged.Discard(); err != nil {
		t.Fatalf("Discard after commit: %v", err)
	}
	if !store.Exists("processed-1.png") {
		t.Fatalf("Discard after commit removed the file")
	}
	assertStagingEmpty(t, base)
}

func TestStageDiscard(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	staged, err := store.Stage(context.Background(), "processed-2.png", []byte("img"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := staged.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if err := staged.Discard(); err != nil {
		t.Fatalf("second Discard: %v", err)
	}
	if err := staged.Commit(); err == nil {
		t.Fatalf("Commit after Discard should fail")
	}
	if store.Exists("processed-2.png") {
		t.Fatalf("discarded file visible")
	}
	assertStagingEmpty(t, base)
}

func TestRevertCommitted(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	pending, err := store.Stage(context.Background(), "thumbnail-3.png", []byte("img"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := pending.Revert(); err != nil {
		t.Fatalf("Revert before commit: %v", err)
	}
	if err := pending.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := pending.Revert(); err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if store.Exists("thumbnail-3.png") {
		t.Fatalf("reverted file still visible")
	}
	if err := pending.Commit(); err == nil {
		t.Fatalf("Commit after Revert should fail")
	}
	assertStagingEmpty(t, base)
}

func TestStagingAreaNotAddressable(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), ".staging/x", []byte("x")); err == nil {
		t.Fatalf("Write into staging area should fail")
	}
	if store.Exists(".staging") {
		t.Fatalf("Exists(.staging) = true")
	}
}

func assertStagingEmpty(t *testing.T, base string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(base, stagingDir))
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging dir has %d leftover entries", len(entries))
	}
}

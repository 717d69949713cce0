package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"children/a/photo.png", "children/a/photo.png", false},
		{"/children/a/photo.png", "children/a/photo.png", false},
		{"../../etc/passwd", "etc/passwd", false},
		{"", "", true},
		{"/", "", true},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("CleanKey(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("CleanKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocalUploadAndDelete(t *testing.T) {
	base := t.TempDir()
	driver := NewLocal(base)
	ctx := context.Background()

	url, err := driver.Upload(ctx, strings.NewReader("image-bytes"), "children/c1/photo.png", "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/uploads/children/c1/photo.png" {
		t.Fatalf("url = %q", url)
	}
	content, err := os.ReadFile(filepath.Join(base, "children", "c1", "photo.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "image-bytes" {
		t.Fatalf("content = %q", content)
	}
	if err := driver.Delete(ctx, "children/c1/photo.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := driver.Delete(ctx, "children/c1/photo.png"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), Config{Driver: "ftp"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(context.Background(), Config{Driver: "s3"}); err == nil {
		t.Fatal("expected error for s3 without bucket")
	}
}

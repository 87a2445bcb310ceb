package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.PNG", "c.tif", "d.webp"} {
		if !IsImageFile(name) {
			t.Errorf("%s should be an image", name)
		}
	}
	for _, name := range []string{"a.txt", "config.json", "noext"} {
		if IsImageFile(name) {
			t.Errorf("%s should not be an image", name)
		}
	}
}

func TestSourceBaseName(t *testing.T) {
	tests := map[string]string{
		"/data/plates/plate_01.jpg":             "plate_01",
		"plate.tar.png":                         "plate.tar",
		"https://example.com/img/plate.png?x=1": "plate",
		"https://example.com/":                  "example.com",
	}
	for source, want := range tests {
		if got := SourceBaseName(source); got != want {
			t.Errorf("SourceBaseName(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/in/plate.jpg", "out", "_chl", "png")
	if want := filepath.Join("out", "plate_chl.png"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "day2")
	if err := EnsureDir(sub); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{filepath.Join(sub, "b.png"), filepath.Join(dir, "a.jpg"), filepath.Join(dir, "notes.txt")} {
		if err := os.WriteFile(name, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatalf("ListImageFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 images, got %v", files)
	}
	if filepath.Base(files[0]) != "a.jpg" {
		t.Errorf("Expected sorted listing, got %v", files)
	}
	if !FileExists(files[0]) || FileExists(dir) || !DirExists(sub) {
		t.Error("Existence checks disagree with the filesystem")
	}
}

package media

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestTrainImagePath(t *testing.T) {
	p := TrainImagePath("Intercity Plus 743", "Photo.JPG")
	re := regexp.MustCompile(`^uploads/trains/intercity-plus-743-[0-9a-f-]{36}\.jpg$`)
	if !re.MatchString(p) {
		t.Fatalf("unexpected path %q", p)
	}
	if TrainImagePath("x", "a.png") == TrainImagePath("x", "a.png") {
		t.Fatal("paths must be unique per upload")
	}
}

func TestAllowedImage(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png": true, "b.JPEG": true, "c.webp": true, "d.exe": false, "noext": false,
	} {
		if got := AllowedImage(name); got != want {
			t.Errorf("AllowedImage(%q) = %v", name, got)
		}
	}
}

// pngHeader is the signature and IHDR chunk of a 1x1 PNG.
const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89"

func TestSniffImage(t *testing.T) {
	body := pngHeader + strings.Repeat("\x00", 1024)
	r, err := SniffImage(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil || string(got) != body {
		t.Fatalf("read back %d bytes, %v; want the full %d", len(got), err, len(body))
	}

	small, err := SniffImage(strings.NewReader("GIF89a\x01\x00\x01\x00"))
	if err != nil {
		t.Fatalf("short gif: %v", err)
	}
	if b, _ := io.ReadAll(small); string(b) != "GIF89a\x01\x00\x01\x00" {
		t.Fatalf("short gif read back %q", b)
	}

	for name, content := range map[string]string{
		"text":       "not really a png",
		"executable": "MZ\x90\x00\x03\x00\x00\x00",
		"empty":      "",
	} {
		if _, err := SniffImage(strings.NewReader(content)); !errors.Is(err, ErrNotImage) {
			t.Errorf("%s: got %v, want ErrNotImage", name, err)
		}
	}
}

func TestSaveAndRemove(t *testing.T) {
	s := NewStore(t.TempDir(), "/media/")
	rel := "uploads/trains/test.png"

	if err := s.Save(rel, strings.NewReader("png-bytes")); err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(filepath.Join(s.Root(), rel))
	if err != nil || string(body) != "png-bytes" {
		t.Fatalf("read back %q, %v", body, err)
	}
	if got := s.URL(rel); got != "/media/uploads/trains/test.png" {
		t.Fatalf("URL = %q", got)
	}

	if err := s.Remove(rel); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(s.URL(rel)); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

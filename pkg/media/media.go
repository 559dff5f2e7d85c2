// Package media stores uploaded train images on the local filesystem.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// TrainImagePath derives the stored name for an image of the named train:
// uploads/trains/<slug>-<uuid><ext>.
func TrainImagePath(trainName, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("uploads", "trains", slug.Make(trainName)+"-"+uuid.NewString()+ext)
}

var allowedMIME = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// sniffLen is how much of an upload is inspected to detect its type.
const sniffLen = 512

var ErrNotImage = errors.New("media: not an image")

func AllowedImage(filename string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(filename))]
}

// SniffImage checks that r starts like one of the allowed image formats. The
// returned reader yields the whole of r, including the inspected head.
func SniffImage(r io.Reader) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("media: read: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	for _, allowed := range allowedMIME {
		if mt.Is(allowed) {
			return io.MultiReader(bytes.NewReader(head), r), nil
		}
	}
	return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
}

type Store struct {
	root   string
	prefix string
}

// NewStore keeps files under root and serves them below the URL prefix.
func NewStore(root, prefix string) *Store {
	return &Store{root: root, prefix: strings.TrimSuffix(prefix, "/")}
}

// Save writes r to rel under the store root, creating directories as needed.
func (s *Store) Save(rel string, r io.Reader) error {
	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("media: mkdir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("media: create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("media: write: %w", err)
	}
	return f.Close()
}

// Remove deletes a stored file given its relative path or public URL. A
// missing file is not an error.
func (s *Store) Remove(rel string) error {
	rel = strings.TrimPrefix(rel, s.prefix+"/")
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URL is the public path of a stored file.
func (s *Store) URL(rel string) string {
	return s.prefix + "/" + rel
}

func (s *Store) Root() string {
	return s.root
}

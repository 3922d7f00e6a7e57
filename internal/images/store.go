// Package images keeps local copies of category and flashcard images.
package images

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Owner kinds used in cached file names.
const (
	KindCategory  = "category"
	KindFlashcard = "flashcard"
)

// maxImageBytes caps downloads and uploads.
const maxImageBytes = 10 << 20

// Store downloads and caches images for categories and flashcards.
type Store struct {
	dir        string
	httpClient *http.Client
}

// NewStore creates an image store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	return &Store{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Fetch returns the cached copy of imageURL for the given owner, downloading
// it first if needed.
func (s *Store) Fetch(ctx context.Context, kind string, ownerID uint, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image url is empty")
	}

	base := s.baseName(kind, ownerID, imageURL)
	if existing, _ := filepath.Glob(filepath.Join(s.dir, base+".*")); len(existing) > 0 {
		return existing[0], nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "FlashMemo/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	ext := extensionFor(resp.Header.Get("Content-Type"), path.Ext(req.URL.Path))
	return s.write(base+ext, resp.Body)
}

// Save stores an uploaded image for the owner, replacing earlier ones.
func (s *Store) Save(kind string, ownerID uint, r io.Reader, contentType string) (string, error) {
	if err := s.Invalidate(kind, ownerID); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s_%d_upload_%d", kind, ownerID, time.Now().UnixNano())
	return s.write(base+extensionFor(contentType, ""), r)
}

// Invalidate removes every cached image of the owner.
func (s *Store) Invalidate(kind string, ownerID uint) error {
	pattern := filepath.Join(s.dir, fmt.Sprintf("%s_%d_*", kind, ownerID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// Contains reports whether p is a file inside the store directory.
func (s *Store) Contains(p string) bool {
	rel, err := filepath.Rel(s.dir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Dir returns the store directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) baseName(kind string, ownerID uint, imageURL string) string {
	hash := sha256.Sum256([]byte(imageURL))
	return fmt.Sprintf("%s_%d_%x", kind, ownerID, hash[:8])
}

// write copies r into name through a temp file so readers never see a
// partial image.
func (s *Store) write(name string, r io.Reader) (string, error) {
	tmpFile, err := os.CreateTemp(s.dir, "image_tmp_")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return "", err
	}
	if n > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		return "", err
	}
	return target, nil
}

func extensionFor(contentType, fallback string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/jpeg":
			return ".jpg"
		case "image/png":
			return ".png"
		case "image/gif":
			return ".gif"
		case "image/webp":
			return ".webp"
		case "image/svg+xml":
			return ".svg"
		}
	}
	if fallback != "" && len(fallback) <= 5 {
		return strings.ToLower(fallback)
	}
	return ".img"
}

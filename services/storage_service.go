package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drivebox/utils"

	"github.com/google/uuid"
)

// StorageService is the content store: a single local directory of
// write-once byte objects addressed by opaque locators. Locators are
// never reused, so no locking is needed across requests.
type StorageService struct {
	root string
}

func NewStorageService(root string) (*StorageService, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	return &StorageService{root: root}, nil
}

// Put writes the stream to a newly allocated object and returns its
// locator and the number of bytes written. The key combines the current
// time, a random component and the original name so concurrent uploads
// cannot collide.
func (s *StorageService) Put(r io.Reader, originalName string) (string, int64, error) {
	locator := fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), uuid.NewString()[:8], sanitizeObjectName(originalName))

	f, err := os.Create(filepath.Join(s.root, locator))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create storage object: %w", err)
	}

	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filepath.Join(s.root, locator))
		return "", 0, fmt.Errorf("failed to write storage object: %w", err)
	}

	return locator, written, nil
}

// Get opens the object for reading. A missing object is ErrNotFound;
// callers that tolerate orphaned metadata check for it.
func (s *StorageService) Get(locator string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.Base(locator)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open storage object: %w", err)
	}
	return f, nil
}

// Delete removes the object. An already-absent object is not an error.
func (s *StorageService) Delete(locator string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(locator)))
	if err != nil {
		if os.IsNotExist(err) {
			utils.LogWarning(fmt.Sprintf("storage object %s already absent on delete", locator))
			return nil
		}
		return fmt.Errorf("failed to delete storage object: %w", err)
	}
	return nil
}

// sanitizeObjectName keeps locators filesystem-safe on every platform.
func sanitizeObjectName(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(name)
}

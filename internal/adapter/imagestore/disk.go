// Package imagestore keeps uploaded item images on local disk.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/jonboulle/clockwork"
)

var extensions = map[string]string{
	"image/jpg":  "jpg",
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// Disk stores images as files in one directory.
type Disk struct {
	dir   string
	clock clockwork.Clock
}

var _ domain.ImageStore = (*Disk)(nil)

// NewDisk creates dir if needed.
func NewDisk(dir string, clock clockwork.Clock) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Disk{dir: dir, clock: clock}, nil
}

func (d *Disk) Dir() string { return d.dir }

// safeRune keeps stored names usable as a URL path segment without escaping.
func safeRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '.', r == '_', r == '-':
		return r
	default:
		return '_'
	}
}

// FileName builds the stored name: the client's file name with every
// character outside [A-Za-z0-9._-] replaced by an underscore, then the
// current unix milliseconds and extension.
func (d *Disk) FileName(original, contentType string) (string, error) {
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, contentType)
	}
	base := filepath.Base(original)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		base = "image"
	}
	base = strings.Map(safeRune, base)
	return base + strconv.FormatInt(d.clock.Now().UnixMilli(), 10) + "." + ext, nil
}

func (d *Disk) Save(_ context.Context, upload domain.Upload) (string, error) {
	name, err := d.FileName(upload.Filename, upload.ContentType)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, upload.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}
	return name, nil
}

func (d *Disk) Remove(_ context.Context, name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", domain.ErrImageNotFound, name)
	}
	err := os.Remove(filepath.Join(d.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrImageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// Orphans lists stored files that no item references and that were last
// modified at least minAge ago. Younger files may belong to an upload whose
// item row is still being written.
func (d *Disk) Orphans(referenced map[string]struct{}, minAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list image directory: %w", err)
	}

	cutoff := d.clock.Now().Add(-minAge)
	var orphans []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		orphans = append(orphans, entry.Name())
	}
	return orphans, nil
}

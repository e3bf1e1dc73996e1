package imagestore

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisk(t *testing.T) (*Disk, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1700000000123))
	d, err := NewDisk(filepath.Join(t.TempDir(), "images"), clock)
	require.NoError(t, err)
	return d, clock
}

func TestFileName(t *testing.T) {
	d, _ := newTestDisk(t)

	tests := []struct {
		original    string
		contentType string
		want        string
	}{
		{"hot sauce.jpg", "image/jpeg", "hot_sauce.jpg1700000000123.jpg"},
		{"pic.png", "image/png", "pic.png1700000000123.png"},
		{"a b c", "image/jpg", "a_b_c1700000000123.jpg"},
		{"../../etc/passwd", "image/png", "passwd1700000000123.png"},
		{"a#b?c%d&e.png", "image/png", "a_b_c_d_e.png1700000000123.png"},
		{"épicé.jpg", "image/jpeg", "_pic_.jpg1700000000123.jpg"},
		{"..", "image/png", "image1700000000123.png"},
	}
	for _, tt := range tests {
		got, err := d.FileName(tt.original, tt.contentType)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := d.FileName("doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSaveAndRemove(t *testing.T) {
	d, _ := newTestDisk(t)
	ctx := context.Background()

	name, err := d.Save(ctx, domain.Upload{Filename: "x.png", ContentType: "image/png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(d.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, d.Remove(ctx, name))
	_, err = os.Stat(filepath.Join(d.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, d.Remove(ctx, name), domain.ErrImageNotFound)
	assert.ErrorIs(t, d.Remove(ctx, "../secret"), domain.ErrImageNotFound)
}

func TestSave_RejectsUnsupportedType(t *testing.T) {
	d, _ := newTestDisk(t)

	_, err := d.Save(context.Background(), domain.Upload{Filename: "x.gif", ContentType: "image/gif", Body: strings.NewReader("gif")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	entries, err := os.ReadDir(d.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_DistinctNamesOverTime(t *testing.T) {
	d, clock := newTestDisk(t)
	ctx := context.Background()

	first, err := d.Save(ctx, domain.Upload{Filename: "x.png", ContentType: "image/png", Body: strings.NewReader("1")})
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	second, err := d.Save(ctx, domain.Upload{Filename: "x.png", ContentType: "image/png", Body: strings.NewReader("2")})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestOrphans(t *testing.T) {
	d, clock := newTestDisk(t)
	ctx := context.Background()

	kept, err := d.Save(ctx, domain.Upload{Filename: "kept.png", ContentType: "image/png", Body: strings.NewReader("k")})
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	orphan, err := d.Save(ctx, domain.Upload{Filename: "orphan.png", ContentType: "image/png", Body: strings.NewReader("o")})
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	fresh, err := d.Save(ctx, domain.Upload{Filename: "fresh.png", ContentType: "image/png", Body: strings.NewReader("f")})
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(d.Dir(), "subdir"), 0o755))

	old := clock.Now().Add(-2 * time.Hour)
	for _, name := range []string{kept, orphan} {
		require.NoError(t, os.Chtimes(filepath.Join(d.Dir(), name), old, old))
	}
	recent := clock.Now()
	require.NoError(t, os.Chtimes(filepath.Join(d.Dir(), fresh), recent, recent))

	got, err := d.Orphans(map[string]struct{}{kept: {}}, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, got)
}

func TestSave_NameResolvesAsURLPath(t *testing.T) {
	d, _ := newTestDisk(t)

	for _, original := range []string{"sauce #1?.png", "100% piment.png", "épicé/../x y.png"} {
		name, err := d.Save(context.Background(), domain.Upload{Filename: original, ContentType: "image/png", Body: strings.NewReader("x")})
		require.NoError(t, err)

		u, err := url.Parse(domain.ImageURL("http://localhost:3000", name))
		require.NoError(t, err)
		assert.Equal(t, domain.ImagePath+name, u.Path, original)
		assert.Empty(t, u.RawQuery, original)
		assert.Empty(t, u.Fragment, original)
		assert.FileExists(t, filepath.Join(d.Dir(), path.Base(u.Path)))
	}
}

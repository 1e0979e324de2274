package service

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/set-night/chatdigest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestArchive builds a zip in a temp dir from name -> content
// pairs, preserving entry order.
func writeTestArchive(t *testing.T, entries [][2]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestOpenArchive(t *testing.T) {
	path := writeTestArchive(t, [][2]string{
		{"IMG-0001.jpg", "jpgdata"},
		{"WhatsApp Chat with Friends.txt", "29/01/2020, 23:29 - Alice: hi"},
		{"notes.txt", "ignored: only the first txt is the transcript"},
		{"VID-0001.mp4", "mp4data"},
		{"photo.PNG", "pngdata"},
		{"readme.pdf", "unsupported"},
	})

	a, err := OpenArchive(path)
	require.NoError(t, err)

	assert.Equal(t, "WhatsApp Chat with Friends.txt", a.Transcript)
	assert.Equal(t, []string{"IMG-0001.jpg", "photo.PNG"}, a.Images)
	assert.Equal(t, []string{"VID-0001.mp4"}, a.Videos)

	assert.True(t, a.HasMedia("IMG-0001.jpg"))
	assert.False(t, a.HasMedia("readme.pdf"))
	assert.False(t, a.HasMedia("notes.txt"))

	raw, err := a.ReadTranscript()
	require.NoError(t, err)
	assert.Equal(t, "29/01/2020, 23:29 - Alice: hi", string(raw))
}

func TestOpenArchiveNoTranscript(t *testing.T) {
	path := writeTestArchive(t, [][2]string{
		{"IMG-0001.jpg", "jpgdata"},
	})

	_, err := OpenArchive(path)
	assert.ErrorIs(t, err, domain.ErrNoTranscript)
}

func TestOpenArchiveMissingFile(t *testing.T) {
	_, err := OpenArchive(filepath.Join(t.TempDir(), "absent.zip"))
	assert.Error(t, err)
}

func TestReadMedia(t *testing.T) {
	path := writeTestArchive(t, [][2]string{
		{"chat.txt", "29/01/2020, 23:29 - Alice: hi"},
		{"IMG-0001.jpg", "jpgdata"},
	})

	a, err := OpenArchive(path)
	require.NoError(t, err)

	data, err := a.ReadMedia("IMG-0001.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpgdata", string(data))

	_, err = a.ReadMedia("IMG-9999.jpg")
	assert.True(t, errors.Is(err, domain.ErrMediaNotFound))
}

func TestExtractMedia(t *testing.T) {
	path := writeTestArchive(t, [][2]string{
		{"chat.txt", "29/01/2020, 23:29 - Alice: hi"},
		{"media/VID-0001.mp4", "mp4data"},
	})

	a, err := OpenArchive(path)
	require.NoError(t, err)

	dir := t.TempDir()
	dst, err := a.ExtractMedia("media/VID-0001.mp4", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "VID-0001.mp4"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "mp4data", string(data))
}

func TestMediaNameHelpers(t *testing.T) {
	assert.True(t, IsImageName("a.jpg"))
	assert.True(t, IsImageName("a.JPEG"))
	assert.True(t, IsImageName("a.png"))
	assert.True(t, IsImageName("a.webp"))
	assert.False(t, IsImageName("a.gif"))
	assert.True(t, IsVideoName("b.mp4"))
	assert.True(t, IsVideoName("b.MP4"))
	assert.False(t, IsVideoName("b.mov"))

	assert.Equal(t, "image/jpeg", MIMEForImage("a.jpg"))
	assert.Equal(t, "image/jpeg", MIMEForImage("a.jpeg"))
	assert.Equal(t, "image/png", MIMEForImage("a.png"))
	assert.Equal(t, "image/webp", MIMEForImage("a.webp"))
	assert.Equal(t, "", MIMEForImage("a.gif"))
}

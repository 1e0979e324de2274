package service

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/set-night/chatdigest/internal/domain"
)

const transcriptExt = ".txt"

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

const videoExt = ".mp4"

// Archive is one opened WhatsApp export container. Only the listing is
// held in memory; entry contents are read by reopening the zip on
// demand, so an Archive is safe to share between the foreground and a
// background summarization cycle.
type Archive struct {
	Path       string
	Transcript string
	Images     []string
	Videos     []string

	media map[string]struct{}
}

// OpenArchive opens the container at path and enumerates its contents.
// The transcript is the first entry whose name ends in ".txt", in
// listing order. Media entries are matched case-insensitively by
// extension whether or not any message references them.
func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	a := &Archive{Path: path, media: make(map[string]struct{})}
	for _, f := range zr.File {
		name := f.Name
		if a.Transcript == "" && strings.HasSuffix(strings.ToLower(name), transcriptExt) {
			a.Transcript = name
			continue
		}
		switch {
		case IsImageName(name):
			a.Images = append(a.Images, name)
			a.media[name] = struct{}{}
		case IsVideoName(name):
			a.Videos = append(a.Videos, name)
			a.media[name] = struct{}{}
		}
	}

	if a.Transcript == "" {
		return nil, domain.ErrNoTranscript
	}
	return a, nil
}

// HasMedia reports whether name exactly matches an enumerated media
// entry.
func (a *Archive) HasMedia(name string) bool {
	_, ok := a.media[name]
	return ok
}

// ReadTranscript returns the raw transcript bytes.
func (a *Archive) ReadTranscript() ([]byte, error) {
	return a.readEntry(a.Transcript)
}

// ReadMedia returns the raw bytes of one media entry.
func (a *Archive) ReadMedia(name string) ([]byte, error) {
	if !a.HasMedia(name) {
		return nil, domain.ErrMediaNotFound
	}
	return a.readEntry(name)
}

// ExtractMedia writes one media entry into dir and returns the written
// path. Used for tools that need a real file, like ffmpeg.
func (a *Archive) ExtractMedia(name, dir string) (string, error) {
	data, err := a.ReadMedia(name)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return "", fmt.Errorf("extract media: %w", err)
	}
	return dst, nil
}

func (a *Archive) readEntry(name string) ([]byte, error) {
	zr, err := zip.OpenReader(a.Path)
	if err != nil {
		return nil, fmt.Errorf("reopen archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", name, err)
		}
		return data, nil
	}
	return nil, domain.ErrMediaNotFound
}

// IsImageName reports whether name has a supported image extension.
func IsImageName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsVideoName reports whether name has the supported video extension.
func IsVideoName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), videoExt)
}

// MIMEForImage returns the MIME type for a supported image filename,
// or "" for anything else.
func MIMEForImage(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return ""
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/set-night/chatdigest/internal/config"
	"github.com/set-night/chatdigest/internal/domain"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// FrameService produces still images for previews and summarizer
// attachments: a single sampled frame for videos via ffmpeg, scaled
// thumbnails for images. Every method degrades to an error the caller
// can swallow; a corrupt entry must never abort a summarization cycle.
type FrameService struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFrameService(ffmpegPath, ffprobePath string) *FrameService {
	return &FrameService{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// SampleFrame decodes the frame at 10% of the video's duration and
// returns it as JPEG bytes. width > 0 scales the frame down keeping
// aspect ratio.
func (s *FrameService) SampleFrame(ctx context.Context, videoPath string, width int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, config.FrameTimeout)
	defer cancel()

	duration, err := s.probeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	seek := duration * config.FrameSampleRatio

	args := []string{
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", seek),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "3",
	}
	if width > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-1", width))
	}
	args = append(args, "-f", "image2", "pipe:1")

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extract: %w; out=%s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, domain.ErrNoFrame
	}
	return stdout.Bytes(), nil
}

// SampleArchiveFrame extracts one video entry to a scratch dir and
// samples its representative frame.
func (s *FrameService) SampleArchiveFrame(ctx context.Context, a *Archive, name string, width int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "chatdigest-frame-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path, err := a.ExtractMedia(name, dir)
	if err != nil {
		return nil, err
	}
	return s.SampleFrame(ctx, path, width)
}

// Preview returns a thumbnail-sized still for any media entry: scaled
// image bytes for images, a sampled frame for videos.
func (s *FrameService) Preview(ctx context.Context, a *Archive, name string) ([]byte, error) {
	switch {
	case IsImageName(name):
		data, err := a.ReadMedia(name)
		if err != nil {
			return nil, err
		}
		return Thumbnail(data, config.ThumbnailWidth)
	case IsVideoName(name):
		return s.SampleArchiveFrame(ctx, a, name, config.ThumbnailWidth)
	}
	return nil, domain.ErrMediaNotFound
}

func (s *FrameService) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// Thumbnail re-encodes image bytes as a JPEG no wider than width.
func Thumbnail(data []byte, width int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > width {
		height := bounds.Dy() * width / bounds.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

package util

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoProber reads the duration of a video file on disk.
type VideoProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// FFmpegProber shells out to ffprobe through ffmpeg-go.
type FFmpegProber struct{}

func NewFFmpegProber() *FFmpegProber {
	return &FFmpegProber{}
}

func (p *FFmpegProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("probe video: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(probeJSON string) (time.Duration, error) {
	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probeJSON), &result); err != nil {
		return 0, fmt.Errorf("parse probe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", result.Format.Duration, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// MediaInfo holds the probed metadata of an uploaded evidence clip.
type MediaInfo struct {
	Duration float64 `json:"duration"` // Seconds
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

// ProbeMedia reads container metadata from an audio or video file using
// ffprobe. Used for audio evidence attached to suspicious-audio violations.
func ProbeMedia(path string) (*MediaInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("media file not found: %w", err)
	}

	probe, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var meta struct {
		Format struct {
			Duration   string `json:"duration"`
			FormatName string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probe), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	duration, _ := strconv.ParseFloat(meta.Format.Duration, 64)

	return &MediaInfo{
		Duration: duration,
		Format:   meta.Format.FormatName,
		Size:     fileInfo.Size(),
	}, nil
}

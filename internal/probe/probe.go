// Package probe wraps ffprobe to inspect container and codec metadata.
package probe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VideoProperties holds the container/stream metadata the validator and
// estimator need.
type VideoProperties struct {
	Width           int
	Height          int
	FPS             float64
	DurationSeconds float64
	FrameCount      int
	CodecTag        string
	HasVideoStream  bool
	HasAudioStream  bool
}

type ffprobeStream struct {
	CodecType   string `json:"codec_type"`
	CodecTagStr string `json:"codec_tag_string"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	RFrameRate  string `json:"r_frame_rate"`
	NbFrames    string `json:"nb_frames"`
	DurationStr string `json:"duration"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

// Probe runs ffprobe against path and returns its structured video/audio
// stream properties.
func Probe(path string) (*VideoProperties, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("probe: ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("probe: parse ffprobe output: %w", err)
	}

	props := &VideoProperties{}
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		props.DurationSeconds = d
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if props.HasVideoStream {
				continue // first video stream wins
			}
			props.HasVideoStream = true
			props.Width = s.Width
			props.Height = s.Height
			props.CodecTag = s.CodecTagStr
			props.FPS = parseFrameRate(s.RFrameRate)
			if n, err := strconv.Atoi(s.NbFrames); err == nil {
				props.FrameCount = n
			}
			if props.DurationSeconds == 0 {
				if d, err := strconv.ParseFloat(s.DurationStr, 64); err == nil {
					props.DurationSeconds = d
				}
			}
		case "audio":
			props.HasAudioStream = true
		}
	}

	if props.FrameCount == 0 && props.FPS > 0 && props.DurationSeconds > 0 {
		props.FrameCount = int(props.FPS * props.DurationSeconds)
	}

	return props, nil
}

// parseFrameRate parses an ffprobe "num/den" rational frame rate string.
func parseFrameRate(s string) float64 {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coreman2200/beatfall/internal/diagnostics"
)

// Muxer attaches a soundtrack to a silent video.
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath string) (string, error)
}

// MuxError reports a failed mux together with what was known about the
// inputs. A duration of -1 means it could not be probed.
type MuxError struct {
	VideoPath     string
	AudioPath     string
	VideoDuration float64
	AudioDuration float64
	Stderr        string
	Err           error
}

func (e *MuxError) Error() string {
	return fmt.Sprintf("mux %s + %s (video %.3fs, audio %.3fs): %v",
		e.VideoPath, e.AudioPath, e.VideoDuration, e.AudioDuration, e.Err)
}

func (e *MuxError) Unwrap() error { return e.Err }

func (e *MuxError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Severity: diagnostics.Err,
		Code:     "MUX.FAILED",
		Summary:  "could not combine video and audio",
		Detail:   e.Error(),
		LikelyCauses: []string{
			"ffmpeg or ffprobe missing from PATH",
			"audio codec not supported by the output container",
		},
		SuggestedFixes: []string{
			"check video.ffmpeg and video.ffprobe in the config",
			"re-run the mux by hand with the intermediate video",
		},
		Evidence: map[string]any{
			"video_path":     e.VideoPath,
			"audio_path":     e.AudioPath,
			"video_duration": e.VideoDuration,
			"audio_duration": e.AudioDuration,
			"stderr":         e.Stderr,
		},
	}
}

// OutputPath inserts "_with_audio" before the extension of videoPath.
func OutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + "_with_audio" + ext
}

// Probe returns the container duration of path in seconds.
func (f FFmpeg) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ProbePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: duration %q: %w", path, strings.TrimSpace(string(out)), err)
	}
	return d, nil
}

// Mux copies the video stream, encodes the audio and stops at the shorter
// of the two. Both input durations are probed and logged first.
func (f FFmpeg) Mux(ctx context.Context, videoPath, audioPath string) (string, error) {
	out := OutputPath(videoPath)
	merr := &MuxError{VideoPath: videoPath, AudioPath: audioPath, VideoDuration: -1, AudioDuration: -1}

	vd, err := f.Probe(ctx, videoPath)
	if err != nil {
		merr.Err = err
		return "", merr
	}
	merr.VideoDuration = vd
	ad, err := f.Probe(ctx, audioPath)
	if err != nil {
		merr.Err = err
		return "", merr
	}
	merr.AudioDuration = ad
	f.Log.Info().Float64("video_s", vd).Float64("audio_s", ad).Str("out", out).Msg("muxing")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Path,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", f.AudioCodec,
		"-shortest",
		"-loglevel", "error",
		out,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		merr.Err = err
		merr.Stderr = strings.TrimSpace(stderr.String())
		return "", merr
	}
	return out, nil
}

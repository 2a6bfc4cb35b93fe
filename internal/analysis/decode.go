package analysis

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

const resampleQuality = 4

// Decode reads path as mono samples in [-1,1] at rate Hz. WAV, MP3, FLAC and
// Ogg Vorbis are decoded in process; anything else goes through ffmpeg.
func Decode(ctx context.Context, path string, rate int, ffmpeg string) ([]float64, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3", ".flac", ".ogg":
	default:
		return decodeFFmpeg(ctx, path, rate, ffmpeg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if int(format.SampleRate) != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(rate), s)
	}
	y := readMono(src, s.Len(), float64(rate)/float64(format.SampleRate))
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return y, nil
}

// readMono drains s, averaging both channels.
func readMono(s beep.Streamer, srcLen int, ratio float64) []float64 {
	y := make([]float64, 0, int(float64(srcLen)*ratio)+1)
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			y = append(y, (smp[0]+smp[1])/2)
		}
		if !ok {
			return y
		}
	}
}

func decodeFFmpeg(ctx context.Context, path string, rate int, ffmpeg string) ([]float64, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(rate),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}
	y := make([]float64, len(out)/2)
	for i := range y {
		y[i] = float64(int16(binary.LittleEndian.Uint16(out[i*2:]))) / 32768
	}
	return y, nil
}

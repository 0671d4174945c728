package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const (
	MaxDurationSeconds = 60              // 1 minute maximum
	MaxFileSize        = 5 * 1024 * 1024 // 5MB (conservative buffer)
	TargetSampleRate   = 16000
	DefaultLanguage    = "en-US"
)

var (
	ErrAudioTooLong = errors.New("audio exceeds maximum duration")
	ErrAudioTooBig  = errors.New("audio exceeds maximum upload size")
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	return &header, nil
}

// duration estimates playback length from the header, falling back to the
// payload size when the data chunk is not where a canonical header puts it.
func (h *waveHeader) duration(total int) time.Duration {
	if h.ByteRate == 0 {
		return 0
	}
	size := int64(h.DataSize)
	if string(h.DataTag[:]) != "data" || size <= 0 || size > int64(total) {
		size = int64(total - 44)
	}
	return time.Duration(size) * time.Second / time.Duration(h.ByteRate)
}

// PrepareAudio reads an upload of any ffmpeg-readable format and returns 16 kHz
// mono PCM WAV suitable for recognition.
func PrepareAudio(ctx context.Context, r io.Reader) ([]byte, error) {
	tempInput, err := os.CreateTemp("", "audio-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()

	n, err := io.Copy(tempInput, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}
	if n > MaxFileSize {
		return nil, ErrAudioTooBig
	}

	tempOutput, err := os.CreateTemp("", "converted-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	defer os.Remove(tempOutput.Name())
	tempOutput.Close()

	if err := convertAudio(ctx, tempInput.Name(), tempOutput.Name()); err != nil {
		return nil, err
	}

	audioData, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	header, err := parseWaveHeader(audioData)
	if err != nil {
		return nil, fmt.Errorf("converted audio is not valid WAV: %w", err)
	}
	if header.duration(len(audioData)) > MaxDurationSeconds*time.Second {
		return nil, ErrAudioTooLong
	}
	return audioData, nil
}

func convertAudio(ctx context.Context, inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-map_metadata", "-1",
		"-fflags", "+bitexact",
		"-flags:a", "+bitexact",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}

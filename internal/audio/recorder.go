package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// Recorder streams raw PCM chunks into a WAV file as they arrive. A
// placeholder header is written up front and patched with the final sizes
// on Close, so a crash mid-session leaves a recognizable (if truncated)
// file rather than nothing.
type Recorder struct {
	file       *os.File
	sampleRate int
	dataBytes  uint32
	closed     bool
}

// NewRecorder creates the target directory and opens the WAV file for the
// given session.
func NewRecorder(dir, room, sessionID string, sampleRate int) (*Recorder, error) {
	target := filepath.Join(dir, room)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory %s: %w", target, err)
	}

	path := filepath.Join(target, sessionID+".wav")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file %s: %w", path, err)
	}

	r := &Recorder{file: file, sampleRate: sampleRate}
	if err := r.writeHeader(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}

	return r, nil
}

// Write appends a raw PCM chunk to the recording.
func (r *Recorder) Write(chunk []byte) error {
	if r.closed {
		return fmt.Errorf("recorder already closed")
	}

	if _, err := r.file.Write(chunk); err != nil {
		return fmt.Errorf("failed to write recording chunk: %w", err)
	}
	r.dataBytes += uint32(len(chunk))

	return nil
}

// Close patches the header with the final data size and closes the file.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if _, err := r.file.Seek(0, 0); err != nil {
		r.file.Close()
		return fmt.Errorf("failed to rewind recording: %w", err)
	}
	if err := r.writeHeader(); err != nil {
		r.file.Close()
		return err
	}

	return r.file.Close()
}

// Path returns the recording file path.
func (r *Recorder) Path() string {
	return r.file.Name()
}

func (r *Recorder) writeHeader() error {
	header := newWAVHeader(r.sampleRate, r.dataBytes)

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to encode WAV header: %w", err)
	}

	if _, err := r.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	return nil
}

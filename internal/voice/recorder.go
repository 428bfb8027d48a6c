package voice

import (
	"bytes"
	"errors"
	"sync"
)

var (
	// ErrAlreadyRecording is returned by Start while a session is open.
	ErrAlreadyRecording = errors.New("voice: already recording")
	// ErrNotRecording is returned by Stop and Append when no session is open.
	ErrNotRecording = errors.New("voice: not recording")
)

// Recorder is the microphone latch: at most one recording session at a time.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	buf       bytes.Buffer
}

// Start opens a session. A second Start does not open another one.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.buf.Reset()
	return nil
}

// Append buffers a chunk of the open session's audio.
func (r *Recorder) Append(chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return ErrNotRecording
	}
	r.buf.Write(chunk)
	return nil
}

// Stop closes the session and returns everything appended to it.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return nil, ErrNotRecording
	}
	r.recording = false
	audio := bytes.Clone(r.buf.Bytes())
	r.buf.Reset()
	return audio, nil
}

// Recording reports whether a session is open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

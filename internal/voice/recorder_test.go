package voice

import (
	"errors"
	"sync"
	"testing"
)

func TestRecorder_Latch(t *testing.T) {
	var r Recorder

	if _, err := r.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop while idle err = %v, want ErrNotRecording", err)
	}
	if err := r.Append([]byte("x")); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Append while idle err = %v, want ErrNotRecording", err)
	}

	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second Start err = %v, want ErrAlreadyRecording", err)
	}
	if !r.Recording() {
		t.Error("Recording() = false during session")
	}

	r.Append([]byte("hello "))
	r.Append([]byte("world"))
	audio, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(audio) != "hello world" {
		t.Errorf("audio = %q", audio)
	}
	if r.Recording() {
		t.Error("Recording() = true after Stop")
	}
}

func TestRecorder_NewSessionStartsEmpty(t *testing.T) {
	var r Recorder
	r.Start()
	r.Append([]byte("old"))
	r.Stop()

	r.Start()
	audio, _ := r.Stop()
	if len(audio) != 0 {
		t.Errorf("audio = %q, want empty", audio)
	}
}

func TestRecorder_ConcurrentStartOpensOneSession(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Start() == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Errorf("sessions started = %d, want 1", started)
	}
}

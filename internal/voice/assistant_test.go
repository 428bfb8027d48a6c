package voice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/storage"
)

type mockTranscriber struct {
	text  string
	err   error
	block chan struct{}
}

func (m *mockTranscriber) TranscribeAudio(ctx context.Context, _ []byte) (string, error) {
	if m.block != nil {
		<-m.block
	}
	return m.text, m.err
}

type mockRouter struct {
	decision intent.Decision
}

func (m *mockRouter) Route(context.Context, string, profile.UserProfile) intent.Decision {
	return m.decision
}

type mockContent struct {
	result any
	err    error
	kind   content.Kind
	topic  string
}

func (m *mockContent) Generate(_ context.Context, kind content.Kind, topic string, _ profile.UserProfile) (any, error) {
	m.kind, m.topic = kind, topic
	return m.result, m.err
}

type mockHandoff struct {
	puts map[content.Kind]any
}

func (m *mockHandoff) Put(kind content.Kind, v any) error {
	if m.puts == nil {
		m.puts = make(map[content.Kind]any)
	}
	m.puts[kind] = v
	return nil
}

type mockLog struct {
	saved []storage.VoiceInteraction
}

func (m *mockLog) SaveVoiceInteraction(v storage.VoiceInteraction) error {
	m.saved = append(m.saved, v)
	return nil
}

func TestProcess_GenerateStoresHandoff(t *testing.T) {
	recipe := &content.Recipe{Name: "Butter Chicken"}
	gen := &mockContent{result: recipe}
	h := &mockHandoff{}
	log := &mockLog{}
	a := NewAssistant(
		&mockTranscriber{text: "recipe for butter chicken"},
		&mockRouter{decision: intent.NewGenerate(content.KindRecipe, "butter chicken")},
		gen, h, log,
	)

	out, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{Name: "Ada"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Section != "food" {
		t.Errorf("Section = %q, want food", out.Section)
	}
	if out.Message != "I've generated a recipe for butter chicken. Let me show you in the food section!" {
		t.Errorf("Message = %q", out.Message)
	}
	if gen.kind != content.KindRecipe || gen.topic != "butter chicken" {
		t.Errorf("generator got %q/%q", gen.kind, gen.topic)
	}
	if h.puts[content.KindRecipe] != recipe {
		t.Errorf("handoff = %+v", h.puts)
	}
	if len(log.saved) != 1 || log.saved[0].DecisionKind != "generate" || log.saved[0].Status != "completed" {
		t.Errorf("logged = %+v", log.saved)
	}
	if a.Processing() {
		t.Error("latch still held after Process")
	}
}

func TestProcess_GenerationFailure(t *testing.T) {
	h := &mockHandoff{}
	log := &mockLog{}
	a := NewAssistant(
		&mockTranscriber{text: "playlist for rain"},
		&mockRouter{decision: intent.NewGenerate(content.KindPlaylist, "rain")},
		&mockContent{err: content.ErrGenerationFailed}, h, log,
	)

	out, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Failed || out.Section != "" {
		t.Errorf("outcome = %+v, want failed without navigation", out)
	}
	if !strings.HasPrefix(out.Message, "Playlist generation failed") {
		t.Errorf("Message = %q", out.Message)
	}
	if len(h.puts) != 0 {
		t.Error("handoff written for a failed generation")
	}
	if log.saved[0].Status != "failed" {
		t.Errorf("status = %q, want failed", log.saved[0].Status)
	}
}

func TestProcess_Navigate(t *testing.T) {
	a := NewAssistant(
		&mockTranscriber{text: "open journal"},
		&mockRouter{decision: intent.NewNavigate("journal", "Enjoy writing.")},
		&mockContent{}, &mockHandoff{}, nil,
	)
	out, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Message != "Sure! I'm taking you to journal. Enjoy writing." || out.Section != "journal" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProcess_Converse(t *testing.T) {
	a := NewAssistant(
		&mockTranscriber{text: "hi"},
		&mockRouter{decision: intent.NewConverse("Hello, Ada!")},
		&mockContent{}, &mockHandoff{}, nil,
	)
	out, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Message != "Hello, Ada!" || out.Section != "" || out.Transcript != "hi" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProcess_TranscriptionError(t *testing.T) {
	wantErr := errors.New("network down")
	log := &mockLog{}
	a := NewAssistant(&mockTranscriber{err: wantErr}, &mockRouter{}, &mockContent{}, &mockHandoff{}, log)

	if _, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{}); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if a.Processing() {
		t.Error("latch still held after failure")
	}
	if len(log.saved) != 1 || log.saved[0].Status != "failed" {
		t.Errorf("logged = %+v", log.saved)
	}
}

func TestProcess_EmptyAudio(t *testing.T) {
	a := NewAssistant(&mockTranscriber{}, &mockRouter{}, &mockContent{}, &mockHandoff{}, nil)
	if _, err := a.Process(context.Background(), nil, profile.UserProfile{}); !errors.Is(err, ErrNoAudio) {
		t.Errorf("err = %v, want ErrNoAudio", err)
	}
}

func TestProcess_BusyWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	a := NewAssistant(
		&mockTranscriber{text: "hi", block: block},
		&mockRouter{decision: intent.NewConverse("ok")},
		&mockContent{}, &mockHandoff{}, nil,
	)

	done := make(chan error, 1)
	go func() {
		_, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{})
		done <- err
	}()

	for !a.Processing() {
		time.Sleep(time.Millisecond)
	}
	if _, err := a.Process(context.Background(), []byte("audio"), profile.UserProfile{}); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Process err = %v, want ErrBusy", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first Process: %v", err)
	}
}

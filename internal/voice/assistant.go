// Package voice turns a recorded voice command into an action: a generated
// result handed off to its section, a navigation, or a spoken-style reply.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/storage"
)

// ErrBusy is returned by Process while another command is being processed.
var ErrBusy = errors.New("voice: already processing a command")

// ErrNoAudio is returned by Process for an empty recording.
var ErrNoAudio = errors.New("voice: no audio recorded")

type Transcriber interface {
	TranscribeAudio(ctx context.Context, audio []byte) (string, error)
}

type Router interface {
	Route(ctx context.Context, transcript string, p profile.UserProfile) intent.Decision
}

type ContentGenerator interface {
	Generate(ctx context.Context, kind content.Kind, topic string, p profile.UserProfile) (any, error)
}

type Handoff interface {
	Put(kind content.Kind, v any) error
}

// InteractionLog records processed commands. Implemented by storage.Store.
type InteractionLog interface {
	SaveVoiceInteraction(v storage.VoiceInteraction) error
}

// Outcome is what the caller shows after a command.
type Outcome struct {
	Transcript string          `json:"transcript"`
	Decision   intent.Decision `json:"decision"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	// Section is the panel to switch to; empty when the caller should stay put.
	Section string `json:"section,omitempty"`
	Failed  bool   `json:"failed,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Assistant runs the transcribe, route and execute steps of a voice command.
type Assistant struct {
	transcriber Transcriber
	router      Router
	content     ContentGenerator
	handoff     Handoff
	log         InteractionLog

	mu         sync.Mutex
	processing bool
}

// NewAssistant wires the collaborators. log may be nil.
func NewAssistant(t Transcriber, r Router, c ContentGenerator, h Handoff, log InteractionLog) *Assistant {
	return &Assistant{transcriber: t, router: r, content: c, handoff: h, log: log}
}

// Processing reports whether a command is in flight.
func (a *Assistant) Processing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.processing
}

func (a *Assistant) acquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.processing {
		return false
	}
	a.processing = true
	return true
}

func (a *Assistant) release() {
	a.mu.Lock()
	a.processing = false
	a.mu.Unlock()
}

// Process transcribes audio and acts on it. Only a transcription failure is
// returned as an error; every routing or generation problem is reported in
// the Outcome.
func (a *Assistant) Process(ctx context.Context, audio []byte, p profile.UserProfile) (Outcome, error) {
	if len(audio) == 0 {
		return Outcome{}, ErrNoAudio
	}
	if !a.acquire() {
		return Outcome{}, ErrBusy
	}
	defer a.release()

	transcript, err := a.transcriber.TranscribeAudio(ctx, audio)
	if err != nil {
		a.record(storage.VoiceInteraction{Status: "failed", Reply: err.Error()})
		return Outcome{}, fmt.Errorf("transcribing audio: %w", err)
	}
	return a.Respond(ctx, transcript, p), nil
}

// Respond routes an already transcribed command and executes the decision.
func (a *Assistant) Respond(ctx context.Context, transcript string, p profile.UserProfile) Outcome {
	d := a.router.Route(ctx, transcript, p)
	out := Outcome{Transcript: transcript, Decision: d}

	switch d.Kind {
	case intent.KindGenerate:
		a.generate(ctx, d.Generate, p, &out)
	case intent.KindNavigate:
		out.Title = fmt.Sprintf("Navigating to %s!", d.Navigate.TargetSection)
		out.Message = fmt.Sprintf("Sure! I'm taking you to %s. %s", d.Navigate.TargetSection, d.Navigate.ConfirmationMessage)
		out.Section = d.Navigate.TargetSection
	case intent.KindConverse:
		out.Title = "Voice processed!"
		out.Message = d.Converse.ReplyText
	}

	status := "completed"
	if out.Failed {
		status = "failed"
	}
	a.record(storage.VoiceInteraction{
		Transcript:    transcript,
		DecisionKind:  string(d.Kind),
		TargetSection: out.Section,
		Reply:         out.Message,
		Status:        status,
	})
	return out
}

func (a *Assistant) generate(ctx context.Context, req *intent.GenerateContent, p profile.UserProfile, out *Outcome) {
	result, err := a.content.Generate(ctx, req.Kind, req.Topic, p)
	if err == nil {
		err = a.handoff.Put(req.Kind, result)
	}
	if err != nil {
		slog.Warn("voice content generation failed", "kind", req.Kind, "topic", req.Topic, "error", err)
		out.Failed = true
		out.Title = req.Kind.Title() + " Generation Failed"
		out.Message = fmt.Sprintf("%s generation failed. Sorry, I couldn't generate the %s. Please try again.", req.Kind.Title(), req.Kind)
		return
	}

	out.Title = req.Kind.Title() + " Generated!"
	out.Message = successMessage(req.Kind, req.Topic)
	out.Section = req.TargetSection
	out.Result = result
}

func successMessage(kind content.Kind, topic string) string {
	switch kind {
	case content.KindRecipe:
		return fmt.Sprintf("I've generated a recipe for %s. Let me show you in the food section!", topic)
	case content.KindPlaylist:
		return fmt.Sprintf("I've created a %s playlist for you. Let me show you in the music section!", topic)
	case content.KindTravel:
		return fmt.Sprintf("I've created a travel plan for %s. Let me show you in the travel section!", topic)
	case content.KindJournal:
		return "I've created a thoughtful journal prompt for you. Let me show you in the journal section!"
	case content.KindMemory:
		return "I've created a beautiful reflection about your memory. Let me show you in the memories section!"
	}
	return fmt.Sprintf("I've generated your %s.", kind)
}

func (a *Assistant) record(v storage.VoiceInteraction) {
	if a.log == nil {
		return
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()
	if err := a.log.SaveVoiceInteraction(v); err != nil {
		slog.Warn("failed to record voice interaction", "error", err)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/feed"
	"github.com/memojo/memojo/internal/handoff"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/markdown"
	"github.com/memojo/memojo/internal/preferences"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/storage"
	"github.com/memojo/memojo/internal/voice"
)

type AppDeps struct {
	Store       *storage.Store
	Profile     *profile.Manager
	Token       string
	Router      *intent.Router
	Feed        *feed.Feed
	Content     *content.Generator
	Assistant   *voice.Assistant
	Recorder    *voice.Recorder
	Handoff     *handoff.Store
	Preferences *preferences.Log
}

// NewAppHandler returns the loopback API. Everything except /health requires
// the local bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/profile", handleGetProfile(deps))
		r.Put("/profile", handlePutProfile(deps))
		r.Get("/keys", handleListKeys(deps))
		r.Put("/keys/{service}", handleSetKey(deps))

		r.Post("/voice/start", handleVoiceStart(deps))
		r.Post("/voice/stop", handleVoiceStop(deps))
		r.Post("/voice", handleVoice(deps))
		r.Post("/route", handleRoute(deps))

		r.Get("/feed/{section}", handleFeed(deps, false))
		r.Post("/feed/{section}/refresh", handleFeed(deps, true))
		r.Post("/generate/{kind}", handleGenerate(deps))
		r.Post("/caption", handleCaption(deps))
		r.Get("/handoff/{kind}", handleTakeHandoff(deps))

		r.Post("/loves", handleRecordLove(deps))
		r.Get("/loves", handleListLoves(deps))
		r.Get("/loves/stats", handleLoveStats(deps))

		r.Get("/journal", handleListJournal(deps))
		r.Post("/journal", handleAddJournal(deps))
		r.Delete("/journal/{id}", handleDeleteJournal(deps))
		r.Get("/insights", handleInsights(deps))
	})

	return r
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.Get()
		if errors.Is(err, profile.ErrNoProfile) {
			httpError(w, http.StatusNotFound, "not_found", "no profile yet, complete onboarding first")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

func handlePutProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p profile.UserProfile
		if !decodeJSON(w, r, &p) {
			return
		}
		if err := deps.Profile.Replace(p); err != nil {
			if errors.Is(err, profile.ErrNameRequired) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save profile: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "updated"})
	}
}

func handleListKeys(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := deps.Profile.MaskedAPIKeys()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list keys: %v", err)
			return
		}
		if keys == nil {
			keys = []profile.MaskedKey{}
		}
		writeJSON(w, keys)
	}
}

func handleSetKey(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Key string `json:"key"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := deps.Profile.SetAPIKey(chi.URLParam(r, "service"), req.Key); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "updated"})
	}
}

// --- voice ---

func handleVoiceStart(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Recorder.Start(); err != nil {
			httpError(w, http.StatusConflict, "conflict", "%v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "recording"})
	}
}

// handleVoiceStop appends the request body as the final chunk, then closes the
// recording and processes the result. While another command is processing the
// session stays open and 409 is returned.
func handleVoiceStop(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chunk, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBodySize))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading audio: %v", err)
			return
		}
		if len(chunk) > 0 {
			if err := deps.Recorder.Append(chunk); err != nil {
				httpError(w, http.StatusConflict, "conflict", "%v", err)
				return
			}
		}
		// Keep the session open while a command is running so its audio survives a retry.
		if deps.Assistant.Processing() {
			httpError(w, http.StatusConflict, "conflict", "%v", voice.ErrBusy)
			return
		}
		audio, err := deps.Recorder.Stop()
		if err != nil {
			httpError(w, http.StatusConflict, "conflict", "%v", err)
			return
		}
		processAudio(w, r, deps, audio)
	}
}

func handleVoice(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBodySize))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading audio: %v", err)
			return
		}
		processAudio(w, r, deps, audio)
	}
}

func processAudio(w http.ResponseWriter, r *http.Request, deps AppDeps, audio []byte) {
	p, err := deps.Profile.GetOrEmpty()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
		return
	}
	out, err := deps.Assistant.Process(r.Context(), audio, p)
	switch {
	case errors.Is(err, voice.ErrNoAudio):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, voice.ErrBusy):
		httpError(w, http.StatusConflict, "conflict", "%v", err)
	case err != nil:
		upstreamError(w, "voice processing failed", err)
	default:
		writeJSON(w, out)
	}
}

func handleRoute(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Transcript string `json:"transcript"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		writeJSON(w, deps.Router.Route(r.Context(), req.Transcript, p))
	}
}

// --- feed & generation ---

type feedResponse struct {
	Section feed.Section       `json:"section"`
	Items   []feed.ContentItem `json:"items"`
}

func handleFeed(deps AppDeps, refresh bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section := feed.ParseSection(chi.URLParam(r, "section"))
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		mood := r.URL.Query().Get("mood")

		var items []feed.ContentItem
		if refresh {
			items, err = deps.Feed.Refresh(r.Context(), section, p, mood)
		} else {
			items, err = deps.Feed.Get(r.Context(), section, p, mood)
		}
		if err != nil {
			upstreamError(w, "failed to generate personalized content", err)
			return
		}
		writeJSON(w, feedResponse{Section: section, Items: items})
	}
}

func handleGenerate(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := content.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "%v", err)
			return
		}
		var req struct {
			Topic string `json:"topic"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Topic) == "" && kind != content.KindJournal {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "topic is required")
			return
		}
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}

		result, err := deps.Content.Generate(r.Context(), kind, strings.TrimSpace(req.Topic), p)
		if errors.Is(err, content.ErrGenerationFailed) {
			httpError(w, http.StatusBadGateway, "generation_error", "%v", err)
			return
		}
		if err != nil {
			upstreamError(w, "generation failed", err)
			return
		}
		if err := deps.Handoff.Put(kind, result); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}
		writeJSON(w, map[string]any{
			"kind":    kind,
			"section": intent.TargetSection(kind),
			"result":  result,
		})
	}
}

func handleCaption(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		caption, err := deps.Content.Caption(r.Context(), p)
		if errors.Is(err, content.ErrGenerationFailed) {
			httpError(w, http.StatusBadGateway, "generation_error", "%v", err)
			return
		}
		if err != nil {
			upstreamError(w, "failed to generate caption", err)
			return
		}
		writeJSON(w, map[string]string{"caption": caption})
	}
}

func handleTakeHandoff(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := content.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "%v", err)
			return
		}
		raw, err := deps.Handoff.TakeRaw(kind)
		if errors.Is(err, handoff.ErrEmpty) {
			httpError(w, http.StatusNotFound, "not_found", "no pending %s", kind)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
	}
}

// --- loves ---

func handleRecordLove(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev preferences.Event
		if !decodeJSON(w, r, &ev) {
			return
		}
		if ev.Action == "" {
			ev.Action = preferences.Love
		}
		if err := deps.Preferences.Record(ev); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "recorded"})
	}
}

func handleListLoves(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loved, err := deps.Preferences.Loved()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list loves: %v", err)
			return
		}
		if loved == nil {
			loved = []preferences.Event{}
		}
		writeJSON(w, loved)
	}
}

func handleLoveStats(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := deps.Preferences.Stats()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to compute stats: %v", err)
			return
		}
		writeJSON(w, st)
	}
}

// --- journal ---

type journalEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	Tags      []string  `json:"tags"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func toJournalJSON(e storage.JournalEntry) journalEntry {
	tags := []string{}
	if e.Tags != "" {
		if err := json.Unmarshal([]byte(e.Tags), &tags); err != nil {
			slog.Warn("journal entry has unreadable tags", "id", e.ID, "error", err)
			tags = []string{}
		}
	}
	return journalEntry{ID: e.ID, Title: e.Title, BodyHTML: e.BodyHTML, Tags: tags, Source: e.Source, CreatedAt: e.CreatedAt}
}

func handleListJournal(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		entries, err := deps.Store.ListJournalEntries(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list journal: %v", err)
			return
		}
		total, err := deps.Store.CountJournalEntries()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count journal: %v", err)
			return
		}

		out := make([]journalEntry, len(entries))
		for i, e := range entries {
			out[i] = toJournalJSON(e)
		}
		writeJSON(w, map[string]any{"entries": out, "total": total})
	}
}

// JournalRequest adds an entry. Body is markdown; it is stored only as the
// escaped HTML that markdown.ToHTML renders.
type JournalRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

func handleAddJournal(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JournalRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "body is required")
			return
		}
		entry, err := saveJournal(deps.Store, req)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save entry: %v", err)
			return
		}
		writeJSON(w, toJournalJSON(entry))
	}
}

func saveJournal(store *storage.Store, req JournalRequest) (storage.JournalEntry, error) {
	tagsJSON := "[]"
	if len(req.Tags) > 0 {
		b, err := json.Marshal(req.Tags)
		if err != nil {
			return storage.JournalEntry{}, err
		}
		tagsJSON = string(b)
	}
	e := storage.JournalEntry{
		ID:        uuid.NewString(),
		Title:     req.Title,
		BodyHTML:  markdown.ToHTML(req.Body),
		Tags:      tagsJSON,
		Source:    req.Source,
		CreatedAt: time.Now().UTC(),
	}
	if e.Source == "" {
		e.Source = "user"
	}
	return e, store.SaveJournalEntry(e)
}

func handleDeleteJournal(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Store.DeleteJournalEntry(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "journal entry not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete entry: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

// --- insights ---

func handleInsights(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		ic, err := insightContext(deps)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to gather activity: %v", err)
			return
		}
		insights, err := deps.Content.Insights(r.Context(), p, ic)
		if err != nil {
			upstreamError(w, "failed to generate insights", err)
			return
		}
		writeJSON(w, insights)
	}
}

// insightContext summarises recent journal, voice and love activity.
func insightContext(deps AppDeps) (content.InsightContext, error) {
	var ic content.InsightContext

	count, err := deps.Store.CountJournalEntries()
	if err != nil {
		return ic, err
	}
	ic.JournalCount = count

	entries, err := deps.Store.ListJournalEntries(5, 0)
	if err != nil {
		return ic, err
	}
	for _, e := range entries {
		ic.RecentEntries = append(ic.RecentEntries, e.Title)
	}

	voices, err := deps.Store.RecentVoiceInteractions(5)
	if err != nil {
		return ic, err
	}
	for _, v := range voices {
		if v.Transcript != "" {
			ic.RecentCommands = append(ic.RecentCommands, v.Transcript)
		}
	}

	loved, err := deps.Preferences.Loved()
	if err != nil {
		return ic, err
	}
	ic.LovedCount = len(loved)
	return ic, nil
}

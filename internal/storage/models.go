package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// JournalEntry is a dashboard item the user chose to keep, or a free-form
// entry written from the journal section.
type JournalEntry struct {
	ID        string
	Title     string
	BodyHTML  string
	Tags      string // JSON array stored as text
	Source    string // "user", or the section the item was saved from
	CreatedAt time.Time
}

// VoiceInteraction records one processed voice command.
type VoiceInteraction struct {
	ID            string
	CreatedAt     time.Time
	Transcript    string
	DecisionKind  string
	TargetSection string
	Reply         string
	Status        string // "completed", "failed"
}

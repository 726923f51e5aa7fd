package api

import (
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Ext        string   `json:"ext" example:".md"`
	Content    string   `json:"content" example:"# Hello\nWorld"`
	Attributes []string `json:"attributes,omitempty" example:"todo,project=nnote"`
}

// TagRequest is the request body for changing note attributes. Removals
// are applied before assignments.
type TagRequest struct {
	Assign []string `json:"assign,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// TagResponse holds the attribute set after a change.
type TagResponse struct {
	Attributes []models.Attribute `json:"attributes"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// FileInfo describes one stored file (aliased from the domain layer).
type FileInfo = noteservice.FileInfo

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total"`
}

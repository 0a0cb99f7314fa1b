package domain

import (
	"context"
	"io"
)

// UnknownDocument labels answers whose document is no longer loaded.
const UnknownDocument = "Unknown"

// Document is one uploaded file and the text the backend extracted from it.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// DocumentRef is the projection of a Document sent along with a question.
type DocumentRef struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Answer pairs a document reference with the backend's answer and citation.
type Answer struct {
	DocID    string `json:"docId"`
	Answer   string `json:"answer"`
	Citation string `json:"citation"`
}

// Text is the combined form used for display, copy and export.
func (a Answer) Text() string {
	return "Answer: " + a.Answer + "\nCitation: " + a.Citation
}

// QueryRequest is the batched question sent to the backend.
type QueryRequest struct {
	Question  string        `json:"question"`
	Documents []DocumentRef `json:"documents"`
}

// Backend is the remote service doing extraction and question answering.
type Backend interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Query(ctx context.Context, req QueryRequest) ([]Answer, error)
	Theme(ctx context.Context, text string) (string, error)
	Narrate(ctx context.Context, text string) (string, error)
}

// Refs projects documents to the {id, text} pairs the backend expects.
func Refs(docs []Document) []DocumentRef {
	refs := make([]DocumentRef, len(docs))
	for i, d := range docs {
		refs[i] = DocumentRef{ID: d.ID, Text: d.Text}
	}
	return refs
}

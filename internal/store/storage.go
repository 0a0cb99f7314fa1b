package store

import "narraive/internal/domain"

// Storage holds the uploaded documents in upload order.
type Storage interface {
	Append(doc domain.Document)
	Delete(id string) bool
	Get(id string) (domain.Document, bool)
	List() []domain.Document
	Len() int
	Clear()
}

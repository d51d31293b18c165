package models

import (
	"time"

	"github.com/lib/pq"
)

// HighlightSetID is the fixed id of the singleton highlight document.
const HighlightSetID = "main"

// HighlightSet is the curated list of featured product ids. Insertion order
// is preserved for display; ids are unique within the set. Version supports
// optional optimistic concurrency: it increments on every save and a save
// carrying a stale version is rejected.
type HighlightSet struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	ProductIDs pq.StringArray `gorm:"type:text[]" json:"productIds"`
	Version    int64          `json:"version"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Contains reports whether the product id is in the set.
func (s *HighlightSet) Contains(id string) bool {
	for _, v := range s.ProductIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Remove deletes the product id from the set, preserving the order of the
// remaining entries. It reports whether the id was present.
func (s *HighlightSet) Remove(id string) bool {
	for i, v := range s.ProductIDs {
		if v == id {
			s.ProductIDs = append(s.ProductIDs[:i:i], s.ProductIDs[i+1:]...)
			return true
		}
	}
	return false
}

package cache

import (
	"time"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/review"
)

// Entry is a generated report together with its live review session
type Entry struct {
	Report  *model.Report
	Session *review.Session
}

// Store defines the interface for holding served analyses
type Store interface {
	Get(id string) (*Entry, bool)
	Set(id string, entry *Entry, ttl time.Duration)
	Delete(id string)
	Len() int
}

// Key namespaces a report ID
func Key(id string) string {
	return "claimaudit:v1:" + id
}

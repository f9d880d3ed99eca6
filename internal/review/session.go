// Package review layers reviewer annotations over a generated claim set.
package review

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ppiankov/claimaudit/internal/model"
)

var (
	// ErrUnknownClaim is returned when a claim ID is not part of the session
	ErrUnknownClaim = errors.New("unknown claim")
	// ErrInvalidStatus is returned for statuses a reviewer cannot assign
	ErrInvalidStatus = errors.New("invalid review status")
)

// Session holds the reviews for one claim set. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	claims   []model.Claim
	index    map[string]int
	reviews  map[string]model.Review
	feedback string
}

// NewSession starts a session with every claim pending. The claims are copied.
func NewSession(claims []model.Claim) *Session {
	s := &Session{
		claims:  append([]model.Claim(nil), claims...),
		index:   make(map[string]int, len(claims)),
		reviews: make(map[string]model.Review, len(claims)),
	}
	for i, c := range s.claims {
		s.index[c.ID] = i
		s.reviews[c.ID] = model.Review{Status: model.ReviewPending}
	}
	return s
}

// Update records a reviewer decision. Empty notes or reason keep the
// previous value. Only approved, rejected and needs-review may be assigned.
func (s *Session) Update(claimID string, status model.ReviewStatus, notes, reason string) (model.Review, error) {
	switch status {
	case model.ReviewApproved, model.ReviewRejected, model.ReviewNeedsReview:
	default:
		return model.Review{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[claimID]
	if !ok {
		return model.Review{}, fmt.Errorf("%w: %s", ErrUnknownClaim, claimID)
	}
	r.Status = status
	if notes != "" {
		r.Notes = notes
	}
	if reason != "" {
		r.Reason = reason
	}
	s.reviews[claimID] = r
	return r, nil
}

// Review returns the current review of a claim
func (s *Session) Review(claimID string) (model.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[claimID]
	return r, ok
}

// Claim returns a claim by ID
func (s *Session) Claim(claimID string) (model.Claim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[claimID]
	if !ok {
		return model.Claim{}, false
	}
	return s.claims[i], true
}

// Claims returns a copy of the session's claims in generation order
func (s *Session) Claims() []model.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Claim(nil), s.claims...)
}

// Reviews returns a snapshot of every review keyed by claim ID
func (s *Session) Reviews() map[string]model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Review, len(s.reviews))
	for id, r := range s.reviews {
		out[id] = r
	}
	return out
}

// Annotated pairs every claim with its review, in claim order
func (s *Session) Annotated() []model.AnnotatedClaim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AnnotatedClaim, len(s.claims))
	for i, c := range s.claims {
		out[i] = model.AnnotatedClaim{Claim: c, Review: s.reviews[c.ID]}
	}
	return out
}

// Summary tallies the session's review progress
func (s *Session) Summary() model.ReviewSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := model.ReviewSummary{TotalClaims: len(s.claims)}
	for _, r := range s.reviews {
		switch r.Status {
		case model.ReviewApproved:
			sum.Approved++
		case model.ReviewRejected:
			sum.Rejected++
		case model.ReviewNeedsReview:
			sum.NeedsReview++
		}
		if r.Status != model.ReviewPending {
			sum.Reviewed++
		}
	}
	if sum.TotalClaims > 0 {
		sum.Progress = float64(sum.Reviewed) / float64(sum.TotalClaims) * 100
	}
	return sum
}

// SetFeedback records the reviewer's overall feedback
func (s *Session) SetFeedback(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = text
}

// Feedback returns the reviewer's overall feedback
func (s *Session) Feedback() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feedback
}

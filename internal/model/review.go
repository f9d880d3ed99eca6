package model

import (
	"fmt"
	"strings"
)

// ReviewStatus is the reviewer-assigned state of a claim
type ReviewStatus string

const (
	ReviewPending     ReviewStatus = "pending"
	ReviewApproved    ReviewStatus = "approved"
	ReviewRejected    ReviewStatus = "rejected"
	ReviewNeedsReview ReviewStatus = "needs-review"
)

// ParseReviewStatus accepts a status label in any letter case
func ParseReviewStatus(s string) (ReviewStatus, error) {
	switch ReviewStatus(strings.ToLower(strings.TrimSpace(s))) {
	case ReviewPending:
		return ReviewPending, nil
	case ReviewApproved:
		return ReviewApproved, nil
	case ReviewRejected:
		return ReviewRejected, nil
	case ReviewNeedsReview:
		return ReviewNeedsReview, nil
	}
	return "", fmt.Errorf("unknown review status %q (supported: pending, approved, rejected, needs-review)", s)
}

// Review is a reviewer annotation layered on top of a generated claim.
// The generator never produces one.
type Review struct {
	Status ReviewStatus `json:"status" yaml:"status"`
	Notes  string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	Reason string       `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// AnnotatedClaim pairs a claim with its review
type AnnotatedClaim struct {
	Claim  Claim  `json:"claim" yaml:"claim"`
	Review Review `json:"review" yaml:"review"`
}

// ReviewSummary tallies review progress over a claim set
type ReviewSummary struct {
	TotalClaims int     `json:"totalClaims" yaml:"totalClaims"`
	Reviewed    int     `json:"reviewed" yaml:"reviewed"`
	Approved    int     `json:"approved" yaml:"approved"`
	Rejected    int     `json:"rejected" yaml:"rejected"`
	NeedsReview int     `json:"needsReview" yaml:"needsReview"`
	Progress    float64 `json:"progress" yaml:"progress"` // Percent reviewed
}

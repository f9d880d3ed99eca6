package review

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/synth"
)

func TestNewSession_AllPending(t *testing.T) {
	claims := synth.NewSeeded(1).Analysis(4, nil)
	s := NewSession(claims)

	for _, c := range claims {
		r, ok := s.Review(c.ID)
		require.True(t, ok)
		assert.Equal(t, model.ReviewPending, r.Status)
	}

	sum := s.Summary()
	assert.Equal(t, model.ReviewSummary{TotalClaims: 4}, sum)
}

func TestUpdate_KeepsPreviousNotesAndReason(t *testing.T) {
	claims := synth.NewSeeded(2).Analysis(2, nil)
	s := NewSession(claims)
	id := claims[0].ID

	r, err := s.Update(id, model.ReviewRejected, "figures do not match", "contradicted by filing")
	require.NoError(t, err)
	assert.Equal(t, model.Review{Status: model.ReviewRejected, Notes: "figures do not match", Reason: "contradicted by filing"}, r)

	r, err = s.Update(id, model.ReviewNeedsReview, "", "")
	require.NoError(t, err)
	assert.Equal(t, "figures do not match", r.Notes)
	assert.Equal(t, "contradicted by filing", r.Reason)
	assert.Equal(t, model.ReviewNeedsReview, r.Status)
}

func TestUpdate_Errors(t *testing.T) {
	claims := synth.NewSeeded(3).Analysis(1, nil)
	s := NewSession(claims)

	_, err := s.Update("claim-missing", model.ReviewApproved, "", "")
	assert.True(t, errors.Is(err, ErrUnknownClaim))

	_, err = s.Update(claims[0].ID, model.ReviewPending, "", "")
	assert.True(t, errors.Is(err, ErrInvalidStatus))

	_, err = s.Update(claims[0].ID, "done", "", "")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestSummary_Progress(t *testing.T) {
	claims := synth.NewSeeded(4).Analysis(4, nil)
	s := NewSession(claims)

	_, _ = s.Update(claims[0].ID, model.ReviewApproved, "", "")
	_, _ = s.Update(claims[1].ID, model.ReviewRejected, "", "")
	_, _ = s.Update(claims[2].ID, model.ReviewNeedsReview, "", "")

	assert.Equal(t, model.ReviewSummary{
		TotalClaims: 4,
		Reviewed:    3,
		Approved:    1,
		Rejected:    1,
		NeedsReview: 1,
		Progress:    75,
	}, s.Summary())
}

func TestSummary_EmptySession(t *testing.T) {
	s := NewSession(nil)
	assert.Zero(t, s.Summary().Progress)
	assert.Empty(t, s.Annotated())
}

func TestAnnotated_ClaimOrder(t *testing.T) {
	claims := synth.NewSeeded(5).Analysis(3, nil)
	s := NewSession(claims)
	_, err := s.Update(claims[1].ID, model.ReviewApproved, "ok", "")
	require.NoError(t, err)

	got := s.Annotated()
	require.Len(t, got, 3)
	for i, a := range got {
		assert.Equal(t, claims[i].ID, a.Claim.ID)
	}
	assert.Equal(t, model.ReviewApproved, got[1].Review.Status)
	assert.Equal(t, model.ReviewPending, got[0].Review.Status)
}

func TestSession_CopiesInputAndSnapshots(t *testing.T) {
	claims := synth.NewSeeded(6).Analysis(2, nil)
	s := NewSession(claims)
	claims[0].Text = "mutated"

	c, ok := s.Claim(claims[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", c.Text)

	reviews := s.Reviews()
	reviews[claims[0].ID] = model.Review{Status: model.ReviewApproved}
	r, _ := s.Review(claims[0].ID)
	assert.Equal(t, model.ReviewPending, r.Status)

	_, ok = s.Claim("nope")
	assert.False(t, ok)
}

func TestFeedback(t *testing.T) {
	s := NewSession(nil)
	assert.Empty(t, s.Feedback())
	s.SetFeedback("Financial claims need source filings.")
	assert.Equal(t, "Financial claims need source filings.", s.Feedback())
}

func TestSession_ConcurrentUpdates(t *testing.T) {
	claims := synth.NewSeeded(7).Analysis(50, nil)
	s := NewSession(claims)

	var wg sync.WaitGroup
	for i, c := range claims {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, err := s.Update(id, model.ReviewApproved, fmt.Sprintf("note %d", i), "")
			assert.NoError(t, err)
			_ = s.Summary()
		}(i, c.ID)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Summary().Approved)
}

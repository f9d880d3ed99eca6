package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/review"
)

func entry(id string) *Entry {
	claims := []model.Claim{{ID: "claim-1", Text: "x", Category: model.CategoryPolicy, Consistency: model.ConsistencySupported, TrustScore: 90}}
	return &Entry{
		Report:  &model.Report{ID: id, Claims: claims},
		Session: review.NewSession(claims),
	}
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	var s Store = NewMemoryStore(time.Minute, time.Minute)

	_, ok := s.Get("r1")
	assert.False(t, ok)

	e := entry("r1")
	s.Set("r1", e, 0)

	got, ok := s.Get("r1")
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, 1, s.Len())

	s.Delete("r1")
	_, ok = s.Get("r1")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Minute)
	s.Set("short", entry("short"), 20*time.Millisecond)
	s.Set("long", entry("long"), 0)

	time.Sleep(50 * time.Millisecond)

	_, ok := s.Get("short")
	assert.False(t, ok)
	_, ok = s.Get("long")
	assert.True(t, ok)
}

func TestMemoryStore_SharedSession(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Minute)
	s.Set("r1", entry("r1"), 0)

	e, _ := s.Get("r1")
	_, err := e.Session.Update("claim-1", model.ReviewApproved, "", "")
	require.NoError(t, err)

	again, _ := s.Get("r1")
	assert.Equal(t, 1, again.Session.Summary().Approved)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "claimaudit:v1:abc", Key("abc"))
}

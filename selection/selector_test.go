package selection

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	personas "github.com/lifesnaps/persona-extract"
	"github.com/lifesnaps/persona-extract/window"
)

func candidate(id string, start time.Time, score float64) personas.ScoredCandidate {
	return personas.ScoredCandidate{
		Window:  window.Window{ParticipantID: id, Start: start, End: start.AddDate(0, 0, 13)},
		Persona: "A",
		Score:   score,
	}
}

func fixedPool() []personas.ScoredCandidate {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []personas.ScoredCandidate{
		candidate("p3", base, 0.62),
		candidate("p1", base.AddDate(0, 0, 2), 0.88),
		candidate("p2", base, 0.74),
		candidate("p1", base, 0.88),
		candidate("p4", base, 0.40),
	}
}

func TestRankOrdering(t *testing.T) {
	ranked := Rank(fixedPool())
	require.Len(t, ranked, 5)

	// Descending by score; equal scores break by id then start date.
	assert.Equal(t, "p1", ranked[0].Window.ParticipantID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ranked[0].Window.Start)
	assert.Equal(t, "p1", ranked[1].Window.ParticipantID)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), ranked[1].Window.Start)
	assert.Equal(t, "p2", ranked[2].Window.ParticipantID)
	assert.Equal(t, "p3", ranked[3].Window.ParticipantID)
	assert.Equal(t, "p4", ranked[4].Window.ParticipantID)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	pool := fixedPool()
	firstBefore := pool[0].Window.ParticipantID
	_ = Rank(pool)
	assert.Equal(t, firstBefore, pool[0].Window.ParticipantID)
}

func TestSelectBestIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		sel, err := Select(fixedPool(), "A", 0.5, 1, rng, nil)
		require.NoError(t, err)
		assert.Equal(t, MethodBest, sel.Method)
		assert.Equal(t, 1, sel.PoolSize)
		assert.Equal(t, "p1", sel.Candidate.Window.ParticipantID)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), sel.Candidate.Window.Start)
	}
}

func TestSelectThresholdFiltersBeforeRanking(t *testing.T) {
	seed := int64(42)
	rng := rand.New(rand.NewSource(seed))
	// Threshold 0.7 leaves three viable candidates; k=5 caps at pool size.
	sel, err := Select(fixedPool(), "A", 0.7, 5, rng, &seed)
	require.NoError(t, err)
	assert.Equal(t, MethodRandomTopK, sel.Method)
	assert.Equal(t, 3, sel.PoolSize)
	assert.GreaterOrEqual(t, sel.Candidate.Score, 0.7)
	require.NotNil(t, sel.Seed)
	assert.Equal(t, seed, *sel.Seed)
}

func TestSelectTopKReproducible(t *testing.T) {
	seed := int64(42)
	pick := func() string {
		rng := rand.New(rand.NewSource(seed))
		sel, err := Select(fixedPool(), "A", 0.5, 3, rng, &seed)
		require.NoError(t, err)
		return fmt.Sprintf("%s/%s", sel.Candidate.Window.ParticipantID, sel.Candidate.Window.Start.Format("2006-01-02"))
	}

	first := pick()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, pick())
	}
}

func TestSelectTopKDrawsOnlyFromTop(t *testing.T) {
	top := map[string]bool{"p1": true, "p2": true}
	for i := 0; i < 50; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		sel, err := Select(fixedPool(), "A", 0.0, 3, rng, nil)
		require.NoError(t, err)
		assert.True(t, top[sel.Candidate.Window.ParticipantID],
			"draw %s outside the top 3", sel.Candidate.Window.ParticipantID)
	}
}

func TestSelectNoViableCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Select(fixedPool(), "A", 0.95, 1, rng, nil)

	var noViable *NoViableCandidateError
	require.ErrorAs(t, err, &noViable)
	assert.Equal(t, "A", noViable.Persona)
	assert.Equal(t, 0.95, noViable.Threshold)
	assert.Equal(t, 5, noViable.Candidates)

	_, err = Select(nil, "B", 0.5, 1, rng, nil)
	require.ErrorAs(t, err, &noViable)
	assert.Equal(t, 0, noViable.Candidates)
}

func TestSelectRejectsBadK(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Select(fixedPool(), "A", 0.5, 0, rng, nil)
	assert.Error(t, err)
}

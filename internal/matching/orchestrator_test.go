package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/config"
)

type fakeStore struct {
	mu         sync.Mutex
	bottleneck *models.Bottleneck
	candidates []models.CandidateExperience
	matches    map[string]*models.Match
	statusLog  []string
	upserts    int
}

func newFakeStore(b *models.Bottleneck, candidates []models.CandidateExperience) *fakeStore {
	return &fakeStore{
		bottleneck: b,
		candidates: candidates,
		matches:    map[string]*models.Match{},
	}
}

func (s *fakeStore) GetBottleneck(id string) (*models.Bottleneck, error) {
	if s.bottleneck == nil || s.bottleneck.ID != id {
		return nil, apperrors.ErrNotFound
	}
	return s.bottleneck, nil
}

func (s *fakeStore) UpdateBottleneckStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusLog = append(s.statusLog, status)
	s.bottleneck.Status = status
	return nil
}

func (s *fakeStore) ListCandidateExperiences() ([]models.CandidateExperience, error) {
	return s.candidates, nil
}

func (s *fakeStore) GetMatchByPair(bottleneckID, experienceID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[bottleneckID+"/"+experienceID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return m, nil
}

func (s *fakeStore) UpsertMatch(m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	key := m.BottleneckID + "/" + m.ExperienceID
	if existing, ok := s.matches[key]; ok {
		existing.Score = m.Score
		existing.Confidence = m.Confidence
		existing.Reasoning = m.Reasoning
		existing.Explanation = m.Explanation
		return nil
	}
	stored := *m
	stored.Status = models.MatchPending
	s.matches[key] = &stored
	return nil
}

func (s *fakeStore) ListFeedbackSignals(since time.Time, limit int) ([]models.FeedbackSignal, error) {
	return nil, nil
}

type fakeScorer struct {
	mu         sync.Mutex
	batchSizes []int
	results    func(batch []prompts.ScoringCandidate) []schema.BatchMatchResult
	err        error
	entered    chan struct{}
	release    chan struct{}
}

func (f *fakeScorer) MatchBatch(ctx context.Context, bottleneck schema.StructuredBottleneck, candidates []prompts.ScoringCandidate) ([]schema.BatchMatchResult, error) {
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(candidates))
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	if f.err != nil {
		return nil, f.err
	}
	if f.results == nil {
		return nil, nil
	}
	return f.results(candidates), nil
}

func structuredBottleneckJSON(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(schema.StructuredBottleneck{
		ProblemArchetype: schema.ProblemArchetype{Category: "SCALING_SALES"},
		ProblemStatement: "cannot close enterprise deals",
		Urgency:          "HIGH",
	})
	require.NoError(t, err)
	return string(payload)
}

func testBottleneck(t *testing.T) *models.Bottleneck {
	structured := structuredBottleneckJSON(t)
	return &models.Bottleneck{
		ID:         "bn-1",
		StartupID:  "su-1",
		Structured: &structured,
		Status:     models.BottleneckStructured,
	}
}

func testCandidates(n int) []models.CandidateExperience {
	structured, _ := json.Marshal(schema.StructuredExperience{
		ProblemArchetype: schema.ProblemArchetype{Category: "SCALING_SALES"},
		ProblemStatement: "sold into enterprise with no brand",
	})

	var out []models.CandidateExperience
	for i := 0; i < n; i++ {
		out = append(out, models.CandidateExperience{
			ExperienceID: fmt.Sprintf("exp-%d", i),
			MentorID:     fmt.Sprintf("mentor-%d", i),
			MentorName:   fmt.Sprintf("Mentor %d", i),
			Structured:   string(structured),
		})
	}
	return out
}

func matchingCfg() config.MatchingConfig {
	return config.MatchingConfig{
		BatchSize:          10,
		MinScoreThreshold:  40,
		TopMatchesToReturn: 5,
		OverwriteOnRematch: config.OverwriteAlways,
	}
}

func scoreAll(score float64) func(batch []prompts.ScoringCandidate) []schema.BatchMatchResult {
	return func(batch []prompts.ScoringCandidate) []schema.BatchMatchResult {
		var out []schema.BatchMatchResult
		for _, c := range batch {
			out = append(out, schema.BatchMatchResult{
				MentorID:     c.MentorID,
				ExperienceID: c.ExperienceID,
				Score:        score,
				Confidence:   schema.ConfidenceHigh,
				Explanation:  "relevant experience",
			})
		}
		return out
	}
}

func TestGenerateMatches_BatchesAndStatusTransitions(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(12))
	scorer := &fakeScorer{results: scoreAll(75)}

	orch := NewOrchestrator(store, scorer, matchingCfg())
	matches, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.NoError(t, err)
	assert.Equal(t, []int{10, 2}, scorer.batchSizes)
	assert.Equal(t, []string{models.BottleneckMatching, models.BottleneckMatched}, store.statusLog)
	assert.Equal(t, 12, store.upserts)
	// Capped at the configured top-N.
	assert.Len(t, matches, 5)
}

func TestGenerateMatches_FiltersBelowThreshold(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(4))
	scorer := &fakeScorer{
		results: func(batch []prompts.ScoringCandidate) []schema.BatchMatchResult {
			var out []schema.BatchMatchResult
			for i, c := range batch {
				score := 35.0
				if i%2 == 0 {
					score = 80.0
				}
				out = append(out, schema.BatchMatchResult{
					MentorID:     c.MentorID,
					ExperienceID: c.ExperienceID,
					Score:        score,
					Confidence:   schema.ConfidenceMedium,
					Explanation:  "x",
				})
			}
			return out
		},
	}

	orch := NewOrchestrator(store, scorer, matchingCfg())
	matches, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.NoError(t, err)
	assert.Equal(t, 2, store.upserts)
	assert.Len(t, matches, 2)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, 40.0)
	}
}

func TestGenerateMatches_ResultsSortedByScoreDescending(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(4))
	scores := map[string]float64{"exp-0": 55, "exp-1": 91, "exp-2": 47, "exp-3": 78}
	scorer := &fakeScorer{
		results: func(batch []prompts.ScoringCandidate) []schema.BatchMatchResult {
			var out []schema.BatchMatchResult
			for _, c := range batch {
				out = append(out, schema.BatchMatchResult{
					MentorID:     c.MentorID,
					ExperienceID: c.ExperienceID,
					Score:        scores[c.ExperienceID],
					Confidence:   schema.ConfidenceHigh,
					Explanation:  "x",
				})
			}
			return out
		},
	}

	orch := NewOrchestrator(store, scorer, matchingCfg())
	matches, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.NoError(t, err)
	require.Len(t, matches, 4)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	assert.Equal(t, 91.0, matches[0].Score)
}

func TestGenerateMatches_NotStructured(t *testing.T) {
	b := &models.Bottleneck{ID: "bn-1", Status: models.BottleneckPending}
	store := newFakeStore(b, nil)

	orch := NewOrchestrator(store, &fakeScorer{}, matchingCfg())
	_, err := orch.GenerateMatches(context.Background(), "bn-1")

	assert.ErrorIs(t, err, apperrors.ErrNotStructured)
	assert.Empty(t, store.statusLog)
}

func TestGenerateMatches_NoCandidatesLeavesStatusUntouched(t *testing.T) {
	store := newFakeStore(testBottleneck(t), nil)

	orch := NewOrchestrator(store, &fakeScorer{}, matchingCfg())
	matches, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, store.statusLog)
	assert.Equal(t, models.BottleneckStructured, store.bottleneck.Status)
}

func TestGenerateMatches_BatchFailureAbortsRun(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(3))
	scorer := &fakeScorer{err: errors.New("completion backend unavailable")}

	orch := NewOrchestrator(store, scorer, matchingCfg())
	matches, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion backend unavailable")
	assert.Nil(t, matches)
	assert.Equal(t, 0, store.upserts)
	// The bottleneck keeps the status it last reached.
	assert.Equal(t, []string{models.BottleneckMatching}, store.statusLog)
	assert.Equal(t, models.BottleneckMatching, store.bottleneck.Status)
}

func TestGenerateMatches_TiedScoresKeepCandidateOrder(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(3))

	orch := NewOrchestrator(store, &fakeScorer{results: scoreAll(75)}, matchingCfg())
	matches, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.NoError(t, err)
	require.Len(t, matches, 3)
	for i, m := range matches {
		assert.Equal(t, fmt.Sprintf("exp-%d", i), m.ExperienceID)
	}
}

func TestGenerateMatches_ConcurrentRunRejected(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(2))
	scorer := &fakeScorer{
		results: scoreAll(60),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	orch := NewOrchestrator(store, scorer, matchingCfg())

	done := make(chan error, 1)
	go func() {
		_, err := orch.GenerateMatches(context.Background(), "bn-1")
		done <- err
	}()

	<-scorer.entered
	_, err := orch.GenerateMatches(context.Background(), "bn-1")
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(scorer.release)
	require.NoError(t, <-done)

	// The guard is released after the run; a rematch is allowed again.
	scorer.entered = nil
	_, err = orch.GenerateMatches(context.Background(), "bn-1")
	assert.NoError(t, err)
}

func TestGenerateMatches_NeverIfDecidedPreservesDecisions(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(2))
	store.matches["bn-1/exp-0"] = &models.Match{
		ID:           "match-0",
		BottleneckID: "bn-1",
		ExperienceID: "exp-0",
		MentorID:     "mentor-0",
		Score:        50,
		Confidence:   schema.ConfidenceMedium,
		Reasoning:    "{}",
		Status:       models.MatchApproved,
	}

	cfg := matchingCfg()
	cfg.OverwriteOnRematch = config.OverwriteNeverIfDecided

	orch := NewOrchestrator(store, &fakeScorer{results: scoreAll(90)}, cfg)
	_, err := orch.GenerateMatches(context.Background(), "bn-1")

	require.NoError(t, err)
	// Only the undecided pair was written; the approved match kept its score.
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, 50.0, store.matches["bn-1/exp-0"].Score)
	assert.Equal(t, models.MatchApproved, store.matches["bn-1/exp-0"].Status)
}

func TestGenerateMatches_RematchRefreshesScoresKeepsStatus(t *testing.T) {
	store := newFakeStore(testBottleneck(t), testCandidates(1))

	orch := NewOrchestrator(store, &fakeScorer{results: scoreAll(60)}, matchingCfg())
	_, err := orch.GenerateMatches(context.Background(), "bn-1")
	require.NoError(t, err)

	orch2 := NewOrchestrator(store, &fakeScorer{results: scoreAll(85)}, matchingCfg())
	matches, err := orch2.GenerateMatches(context.Background(), "bn-1")
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, 85.0, matches[0].Score)
	assert.Equal(t, models.MatchPending, matches[0].Status)
}

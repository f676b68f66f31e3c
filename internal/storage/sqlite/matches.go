package sqlite

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/logger"
)

// UpsertMatch inserts a match or, when the (bottleneck, experience) pair
// already exists, refreshes the scoring fields. The lifecycle status and
// operator fields are never touched on conflict, so a re-run cannot undo an
// operator decision.
func (c *Client) UpsertMatch(m *models.Match) error {
	query := `
		INSERT INTO matches (id, bottleneck_id, experience_id, mentor_id, score, confidence, reasoning, explanation, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bottleneck_id, experience_id) DO UPDATE SET
			score = excluded.score,
			confidence = excluded.confidence,
			reasoning = excluded.reasoning,
			explanation = excluded.explanation,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	_, err := c.db.Exec(
		query,
		m.ID,
		m.BottleneckID,
		m.ExperienceID,
		m.MentorID,
		m.Score,
		m.Confidence,
		m.Reasoning,
		m.Explanation,
		models.MatchPending,
		now.Unix(),
		now.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	return nil
}

func (c *Client) GetMatch(id string) (*models.Match, error) {
	query := `
		SELECT m.id, m.bottleneck_id, m.experience_id, m.mentor_id, mt.name, m.score, m.confidence,
			m.reasoning, m.explanation, m.status, m.operator_id, m.operator_notes, m.intro_sent_at,
			m.created_at, m.updated_at
		FROM matches m
		JOIN mentors mt ON mt.id = m.mentor_id
		WHERE m.id = ?
	`

	return c.scanMatch(c.db.QueryRow(query, id))
}

func (c *Client) GetMatchByPair(bottleneckID, experienceID string) (*models.Match, error) {
	query := `
		SELECT m.id, m.bottleneck_id, m.experience_id, m.mentor_id, mt.name, m.score, m.confidence,
			m.reasoning, m.explanation, m.status, m.operator_id, m.operator_notes, m.intro_sent_at,
			m.created_at, m.updated_at
		FROM matches m
		JOIN mentors mt ON mt.id = m.mentor_id
		WHERE m.bottleneck_id = ? AND m.experience_id = ?
	`

	return c.scanMatch(c.db.QueryRow(query, bottleneckID, experienceID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (c *Client) scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var operatorID, operatorNotes *string
	var introSentAt *int64
	var createdAt, updatedAt int64

	err := row.Scan(
		&m.ID,
		&m.BottleneckID,
		&m.ExperienceID,
		&m.MentorID,
		&m.MentorName,
		&m.Score,
		&m.Confidence,
		&m.Reasoning,
		&m.Explanation,
		&m.Status,
		&operatorID,
		&operatorNotes,
		&introSentAt,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, translateErr(err)
	}

	if operatorID != nil {
		m.OperatorID = *operatorID
	}
	if operatorNotes != nil {
		m.OperatorNotes = *operatorNotes
	}
	if introSentAt != nil {
		t := time.Unix(*introSentAt, 0)
		m.IntroSentAt = &t
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	m.UpdatedAt = time.Unix(updatedAt, 0)

	return &m, nil
}

// ListMatchesForBottleneck returns all matches for a bottleneck ordered by
// score descending.
func (c *Client) ListMatchesForBottleneck(bottleneckID string) ([]models.Match, error) {
	query := `
		SELECT m.id, m.bottleneck_id, m.experience_id, m.mentor_id, mt.name, m.score, m.confidence,
			m.reasoning, m.explanation, m.status, m.operator_id, m.operator_notes, m.intro_sent_at,
			m.created_at, m.updated_at
		FROM matches m
		JOIN mentors mt ON mt.id = m.mentor_id
		WHERE m.bottleneck_id = ?
		ORDER BY m.score DESC, m.id ASC
	`

	rows, err := c.db.Query(query, bottleneckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := c.scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		matches = append(matches, *m)
	}

	return matches, rows.Err()
}

// ListPendingMatches returns matches awaiting operator review, best first.
func (c *Client) ListPendingMatches(limit int) ([]models.Match, error) {
	query := `
		SELECT m.id, m.bottleneck_id, m.experience_id, m.mentor_id, mt.name, m.score, m.confidence,
			m.reasoning, m.explanation, m.status, m.operator_id, m.operator_notes, m.intro_sent_at,
			m.created_at, m.updated_at
		FROM matches m
		JOIN mentors mt ON mt.id = m.mentor_id
		WHERE m.status = 'PENDING'
		ORDER BY m.score DESC, m.created_at ASC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := c.scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		matches = append(matches, *m)
	}

	return matches, rows.Err()
}

// CountDecidedMatches reports how many matches for a bottleneck carry an
// operator decision (anything past PENDING).
func (c *Client) CountDecidedMatches(bottleneckID string) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE bottleneck_id = ? AND status != 'PENDING'`

	var count int
	if err := c.db.QueryRow(query, bottleneckID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count decided matches: %w", err)
	}
	return count, nil
}

func (c *Client) UpdateMatchStatus(id, status, operatorID, operatorNotes string) error {
	query := `UPDATE matches SET status = ?, operator_id = ?, operator_notes = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.Exec(query, status, operatorID, operatorNotes, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return translateErr(errNoRowsUpdated)
	}

	logger.Info("Match status updated",
		zap.String("match_id", id),
		zap.String("status", status),
		zap.String("operator_id", operatorID),
	)
	return nil
}

func (c *Client) SetMatchIntroSent(id string, at time.Time) error {
	query := `UPDATE matches SET status = ?, intro_sent_at = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.Exec(query, models.MatchIntroSent, at.Unix(), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark intro sent: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return translateErr(errNoRowsUpdated)
	}

	return nil
}

// CreateFeedback records feedback for a match and moves the match to
// COMPLETED in the same transaction. Returns apperrors.ErrDuplicate when the
// match already has feedback.
func (c *Client) CreateFeedback(f *models.Feedback) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO feedback (id, match_id, rating, was_relevant, was_actionable, would_recommend, founder_notes, operator_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(
		query,
		f.ID,
		f.MatchID,
		f.Rating,
		boolPtrToInt(f.WasRelevant),
		boolPtrToInt(f.WasActionable),
		boolPtrToInt(f.WouldRecommend),
		f.FounderNotes,
		f.OperatorNotes,
		f.CreatedAt.Unix(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return translateErr(err)
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE matches SET status = ?, updated_at = ? WHERE id = ?`,
		models.MatchCompleted,
		time.Now().Unix(),
		f.MatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feedback: %w", err)
	}

	logger.Info("Feedback recorded",
		zap.String("match_id", f.MatchID),
		zap.String("rating", f.Rating),
	)
	return nil
}

func boolPtrToInt(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

// ListFeedbackSignals returns the newest feedback rows created after since,
// joined with the reasoning JSON of the rated match. Capped at limit.
func (c *Client) ListFeedbackSignals(since time.Time, limit int) ([]models.FeedbackSignal, error) {
	query := `
		SELECT f.rating, m.reasoning, f.created_at
		FROM feedback f
		JOIN matches m ON m.id = f.match_id
		WHERE f.created_at >= ?
		ORDER BY f.created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback signals: %w", err)
	}
	defer rows.Close()

	var signals []models.FeedbackSignal
	for rows.Next() {
		var s models.FeedbackSignal
		var createdAt int64

		if err := rows.Scan(&s.Rating, &s.Reasoning, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		s.CreatedAt = time.Unix(createdAt, 0)
		signals = append(signals, s)
	}

	return signals, rows.Err()
}

func (c *Client) ListRecentFeedback(limit int) ([]models.Feedback, error) {
	query := `
		SELECT id, match_id, rating, was_relevant, was_actionable, would_recommend, founder_notes, operator_notes, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var f models.Feedback
		var wasRelevant, wasActionable, wouldRecommend *int
		var founderNotes, operatorNotes *string
		var createdAt int64

		err := rows.Scan(&f.ID, &f.MatchID, &f.Rating, &wasRelevant, &wasActionable, &wouldRecommend, &founderNotes, &operatorNotes, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		f.WasRelevant = intPtrToBool(wasRelevant)
		f.WasActionable = intPtrToBool(wasActionable)
		f.WouldRecommend = intPtrToBool(wouldRecommend)
		if founderNotes != nil {
			f.FounderNotes = *founderNotes
		}
		if operatorNotes != nil {
			f.OperatorNotes = *operatorNotes
		}
		f.CreatedAt = time.Unix(createdAt, 0)
		items = append(items, f)
	}

	return items, rows.Err()
}

func intPtrToBool(i *int) *bool {
	if i == nil {
		return nil
	}
	b := *i != 0
	return &b
}

func (c *Client) CountMatchesByStatus() (map[string]int, error) {
	rows, err := c.db.Query(`SELECT status, COUNT(*) FROM matches GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (c *Client) CountFeedbackByRating() ([]models.RatingCount, error) {
	rows, err := c.db.Query(`SELECT rating, COUNT(*) FROM feedback GROUP BY rating ORDER BY rating`)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	defer rows.Close()

	var counts []models.RatingCount
	for rows.Next() {
		var rc models.RatingCount
		if err := rows.Scan(&rc.Rating, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts = append(counts, rc)
	}

	return counts, rows.Err()
}

// AvgScoreByConfidence reports mean match score per confidence tier; used to
// sanity-check that scores track confidence calibration.
func (c *Client) AvgScoreByConfidence() ([]models.ConfidenceStats, error) {
	rows, err := c.db.Query(`SELECT confidence, AVG(score), COUNT(*) FROM matches GROUP BY confidence ORDER BY confidence`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by confidence: %w", err)
	}
	defer rows.Close()

	var stats []models.ConfidenceStats
	for rows.Next() {
		var s models.ConfidenceStats
		if err := rows.Scan(&s.Confidence, &s.AvgScore, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// AvgScoreByRating correlates match scores with the feedback they received.
func (c *Client) AvgScoreByRating() ([]models.RatingScoreStats, error) {
	query := `
		SELECT f.rating, AVG(m.score), COUNT(*)
		FROM feedback f
		JOIN matches m ON m.id = f.match_id
		GROUP BY f.rating
		ORDER BY f.rating
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by rating: %w", err)
	}
	defer rows.Close()

	var stats []models.RatingScoreStats
	for rows.Next() {
		var s models.RatingScoreStats
		if err := rows.Scan(&s.Rating, &s.AvgScore, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

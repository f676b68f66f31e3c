package sqlite

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/logger"
)

func (c *Client) CreateBottleneck(b *models.Bottleneck) error {
	query := `
		INSERT INTO bottlenecks (id, startup_id, raw_blocker, raw_attempts, raw_success_criteria, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		b.ID,
		b.StartupID,
		b.RawBlocker,
		b.RawAttempts,
		b.RawSuccessCriteria,
		b.Status,
		b.CreatedAt.Unix(),
		b.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to create bottleneck: %w", err)
	}

	logger.Debug("Bottleneck created", zap.String("bottleneck_id", b.ID))
	return nil
}

func (c *Client) GetBottleneck(id string) (*models.Bottleneck, error) {
	query := `
		SELECT id, startup_id, raw_blocker, raw_attempts, raw_success_criteria, structured, status, created_at, updated_at
		FROM bottlenecks WHERE id = ?
	`

	var b models.Bottleneck
	var createdAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(
		&b.ID,
		&b.StartupID,
		&b.RawBlocker,
		&b.RawAttempts,
		&b.RawSuccessCriteria,
		&b.Structured,
		&b.Status,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, translateErr(err)
	}

	b.CreatedAt = time.Unix(createdAt, 0)
	b.UpdatedAt = time.Unix(updatedAt, 0)

	return &b, nil
}

// SetBottleneckStructured stores the structured payload and advances the
// status in one write, so a concurrent reader never sees STRUCTURED with a
// null payload.
func (c *Client) SetBottleneckStructured(id, structured, status string) error {
	query := `UPDATE bottlenecks SET structured = ?, status = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.Exec(query, structured, status, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to set structured bottleneck: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return translateErr(errNoRowsUpdated)
	}

	return nil
}

func (c *Client) UpdateBottleneckStatus(id, status string) error {
	query := `UPDATE bottlenecks SET status = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.Exec(query, status, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update bottleneck status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return translateErr(errNoRowsUpdated)
	}

	logger.Debug("Bottleneck status updated",
		zap.String("bottleneck_id", id),
		zap.String("status", status),
	)
	return nil
}

func (c *Client) ListBottlenecksForStartup(startupID string, limit int) ([]models.Bottleneck, error) {
	query := `
		SELECT id, startup_id, raw_blocker, raw_attempts, raw_success_criteria, structured, status, created_at, updated_at
		FROM bottlenecks
		WHERE startup_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, startupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bottlenecks: %w", err)
	}
	defer rows.Close()

	var bottlenecks []models.Bottleneck
	for rows.Next() {
		var b models.Bottleneck
		var createdAt, updatedAt int64

		err := rows.Scan(&b.ID, &b.StartupID, &b.RawBlocker, &b.RawAttempts, &b.RawSuccessCriteria, &b.Structured, &b.Status, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		b.CreatedAt = time.Unix(createdAt, 0)
		b.UpdatedAt = time.Unix(updatedAt, 0)
		bottlenecks = append(bottlenecks, b)
	}

	return bottlenecks, rows.Err()
}

func (c *Client) CountBottlenecksAwaitingMatch() (int, error) {
	query := `SELECT COUNT(*) FROM bottlenecks WHERE status IN ('PENDING', 'STRUCTURED', 'MATCHING')`

	var count int
	if err := c.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending bottlenecks: %w", err)
	}
	return count, nil
}

func (c *Client) CreateExperience(e *models.Experience) error {
	query := `
		INSERT INTO experiences (id, mentor_id, raw_problem, raw_context, raw_solution, raw_outcomes, year_occurred, company_stage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		e.ID,
		e.MentorID,
		e.RawProblem,
		e.RawContext,
		e.RawSolution,
		e.RawOutcomes,
		e.YearOccurred,
		e.CompanyStage,
		e.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to create experience: %w", err)
	}

	logger.Debug("Experience created", zap.String("experience_id", e.ID))
	return nil
}

func (c *Client) GetExperience(id string) (*models.Experience, error) {
	query := `
		SELECT id, mentor_id, raw_problem, raw_context, raw_solution, raw_outcomes, year_occurred, company_stage, structured, created_at
		FROM experiences WHERE id = ?
	`

	var e models.Experience
	var companyStage *string
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&e.ID,
		&e.MentorID,
		&e.RawProblem,
		&e.RawContext,
		&e.RawSolution,
		&e.RawOutcomes,
		&e.YearOccurred,
		&companyStage,
		&e.Structured,
		&createdAt,
	)

	if err != nil {
		return nil, translateErr(err)
	}

	if companyStage != nil {
		e.CompanyStage = *companyStage
	}
	e.CreatedAt = time.Unix(createdAt, 0)

	return &e, nil
}

func (c *Client) SetExperienceStructured(id, structured string) error {
	query := `UPDATE experiences SET structured = ? WHERE id = ?`

	res, err := c.db.Exec(query, structured, id)
	if err != nil {
		return fmt.Errorf("failed to set structured experience: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return translateErr(errNoRowsUpdated)
	}

	return nil
}

// ListCandidateExperiences returns every structured experience belonging to
// an active mentor, in stable creation order. These are the scoring
// candidates for a matching run.
func (c *Client) ListCandidateExperiences() ([]models.CandidateExperience, error) {
	query := `
		SELECT e.id, e.mentor_id, m.name, e.structured
		FROM experiences e
		JOIN mentors m ON m.id = e.mentor_id
		WHERE e.structured IS NOT NULL AND m.is_active = 1
		ORDER BY e.created_at ASC, e.id ASC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate experiences: %w", err)
	}
	defer rows.Close()

	var candidates []models.CandidateExperience
	for rows.Next() {
		var cand models.CandidateExperience
		err := rows.Scan(&cand.ExperienceID, &cand.MentorID, &cand.MentorName, &cand.Structured)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		candidates = append(candidates, cand)
	}

	return candidates, rows.Err()
}

package sqlite

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/logger"
)

func (c *Client) CreateStartup(s *models.Startup) error {
	query := `
		INSERT INTO startups (id, name, founder_name, email, stage, team_size, product_maturity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		s.ID,
		s.Name,
		s.FounderName,
		s.Email,
		s.Stage,
		s.TeamSize,
		s.ProductMaturity,
		s.CreatedAt.Unix(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return translateErr(err)
		}
		return fmt.Errorf("failed to create startup: %w", err)
	}

	logger.Debug("Startup created", zap.String("startup_id", s.ID))
	return nil
}

func (c *Client) GetStartup(id string) (*models.Startup, error) {
	query := `SELECT id, name, founder_name, email, stage, team_size, product_maturity, created_at FROM startups WHERE id = ?`

	var s models.Startup
	var productMaturity *string
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&s.ID,
		&s.Name,
		&s.FounderName,
		&s.Email,
		&s.Stage,
		&s.TeamSize,
		&productMaturity,
		&createdAt,
	)

	if err != nil {
		return nil, translateErr(err)
	}

	if productMaturity != nil {
		s.ProductMaturity = *productMaturity
	}
	s.CreatedAt = time.Unix(createdAt, 0)

	return &s, nil
}

func (c *Client) CreateMentor(m *models.Mentor) error {
	query := `
		INSERT INTO mentors (id, name, email, bio, linkedin_url, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`

	_, err := c.db.Exec(
		query,
		m.ID,
		m.Name,
		m.Email,
		m.Bio,
		m.LinkedinURL,
		m.CreatedAt.Unix(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return translateErr(err)
		}
		return fmt.Errorf("failed to create mentor: %w", err)
	}

	logger.Debug("Mentor created", zap.String("mentor_id", m.ID))
	return nil
}

func (c *Client) GetMentor(id string) (*models.Mentor, error) {
	query := `SELECT id, name, email, bio, linkedin_url, is_active, created_at FROM mentors WHERE id = ?`

	var m models.Mentor
	var bio, linkedinURL *string
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&bio,
		&linkedinURL,
		&m.IsActive,
		&createdAt,
	)

	if err != nil {
		return nil, translateErr(err)
	}

	if bio != nil {
		m.Bio = *bio
	}
	if linkedinURL != nil {
		m.LinkedinURL = *linkedinURL
	}
	m.CreatedAt = time.Unix(createdAt, 0)

	return &m, nil
}

func (c *Client) ListActiveMentors() ([]models.Mentor, error) {
	query := `
		SELECT m.id, m.name, m.email, m.bio, m.linkedin_url, m.is_active, m.created_at,
			COUNT(e.id) AS experience_count
		FROM mentors m
		LEFT JOIN experiences e ON e.mentor_id = m.id
		WHERE m.is_active = 1
		GROUP BY m.id
		ORDER BY m.name ASC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}
	defer rows.Close()

	var mentors []models.Mentor
	for rows.Next() {
		var m models.Mentor
		var bio, linkedinURL *string
		var createdAt int64

		err := rows.Scan(&m.ID, &m.Name, &m.Email, &bio, &linkedinURL, &m.IsActive, &createdAt, &m.ExperienceCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if bio != nil {
			m.Bio = *bio
		}
		if linkedinURL != nil {
			m.LinkedinURL = *linkedinURL
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		mentors = append(mentors, m)
	}

	return mentors, rows.Err()
}

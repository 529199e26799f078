package repository

import (
	"context"
	"errors"
	"fmt"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ApplicationDirectory job application collaborator, owned by the job board service
type ApplicationDirectory interface {
	FindApplication(ctx context.Context, applicationID string) (*domain.Application, error)
	ListApplications(ctx context.Context, jobPostID string) ([]domain.Application, error)
	RejectApplication(ctx context.Context, jobPostID, applicationID string) error
}

type pgApplicationDirectory struct {
	db *pgxpool.Pool
}

// NewApplicationDirectory create a ApplicationDirectory
func NewApplicationDirectory(db *pgxpool.Pool) ApplicationDirectory {
	return &pgApplicationDirectory{db: db}
}

const selectApplication = `SELECT a.id, a.job_post_id, a.applicant_id, p.employer_id, a.status
FROM job_applications a
JOIN job_posts p ON p.id = a.job_post_id`

func (r *pgApplicationDirectory) FindApplication(ctx context.Context, applicationID string) (*domain.Application, error) {
	row := r.db.QueryRow(ctx, selectApplication+" WHERE a.id = $1", applicationID)

	var app domain.Application
	err := row.Scan(&app.ID, &app.JobPostID, &app.ApplicantID, &app.EmployerID, &app.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find application %s: %w", applicationID, err)
	}
	return &app, nil
}

func (r *pgApplicationDirectory) ListApplications(ctx context.Context, jobPostID string) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, selectApplication+" WHERE a.job_post_id = $1 ORDER BY a.created_at, a.id", jobPostID)
	if err != nil {
		return nil, fmt.Errorf("list applications %s: %w", jobPostID, err)
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(&app.ID, &app.JobPostID, &app.ApplicantID, &app.EmployerID, &app.Status); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// RejectApplication 只能 reject 屬於該 job post 的應徵
func (r *pgApplicationDirectory) RejectApplication(ctx context.Context, jobPostID, applicationID string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE job_applications SET status = 'rejected', updated_at = now() WHERE id = $1 AND job_post_id = $2",
		applicationID, jobPostID)
	if err != nil {
		return fmt.Errorf("reject application %s: %w", applicationID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

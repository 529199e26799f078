package repository

import (
	"context"
	"strings"
	"time"

	"jobboard_chat_service/internal/chat/domain"

	"gorm.io/gorm"
)

const jobPostSearchLimit = 50

// JobPostLookup operator read-model over the job board tables
type JobPostLookup interface {
	SearchJobPosts(ctx context.Context, title string) ([]domain.JobPost, error)
	ListApplicants(ctx context.Context, jobPostID string) ([]domain.ApplicantSummary, error)
}

// JobPostRecord job_posts row
type JobPostRecord struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Title      string    `gorm:"column:title"`
	EmployerID string    `gorm:"column:employer_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName gorm table name
func (JobPostRecord) TableName() string { return "job_posts" }

// JobApplicationRecord job_applications row
type JobApplicationRecord struct {
	ID          string    `gorm:"column:id;primaryKey"`
	JobPostID   string    `gorm:"column:job_post_id"`
	ApplicantID string    `gorm:"column:applicant_id"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName gorm table name
func (JobApplicationRecord) TableName() string { return "job_applications" }

// UserRecord users row
type UserRecord struct {
	ID       string `gorm:"column:id;primaryKey"`
	Username string `gorm:"column:username"`
	Role     string `gorm:"column:role"`
}

// TableName gorm table name
func (UserRecord) TableName() string { return "users" }

type gormJobPostLookup struct {
	db *gorm.DB
}

// NewJobPostLookup create a JobPostLookup
func NewJobPostLookup(db *gorm.DB) JobPostLookup {
	return &gormJobPostLookup{db: db}
}

// SearchJobPosts title 包含 text (不分大小寫)
func (r *gormJobPostLookup) SearchJobPosts(ctx context.Context, title string) ([]domain.JobPost, error) {
	var records []JobPostRecord
	pattern := "%" + escapeLike(strings.TrimSpace(title)) + "%"
	err := r.db.WithContext(ctx).
		Where("title ILIKE ?", pattern).
		Order("created_at DESC").
		Limit(jobPostSearchLimit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	posts := make([]domain.JobPost, 0, len(records))
	for _, rec := range records {
		posts = append(posts, domain.JobPost{
			ID:         rec.ID,
			Title:      rec.Title,
			EmployerID: rec.EmployerID,
			CreatedAt:  rec.CreatedAt.UnixMilli(),
		})
	}
	return posts, nil
}

type applicantRow struct {
	ApplicationID string
	ApplicantID   string
	Username      string
	Status        string
}

func (r *gormJobPostLookup) ListApplicants(ctx context.Context, jobPostID string) ([]domain.ApplicantSummary, error) {
	var rows []applicantRow
	err := r.db.WithContext(ctx).
		Model(&JobApplicationRecord{}).
		Select("job_applications.id AS application_id, job_applications.applicant_id, COALESCE(users.username, '') AS username, job_applications.status").
		Joins("LEFT JOIN users ON users.id = job_applications.applicant_id").
		Where("job_applications.job_post_id = ?", jobPostID).
		Order("job_applications.created_at, job_applications.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ApplicantSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ApplicantSummary(row))
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

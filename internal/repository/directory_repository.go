package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/courseops/scheduling-api/internal/models"
)

// DirectoryRepository provides read-only organization and instructor lookups.
// Both tables are owned by the surrounding application; this core never
// writes them.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetOrganization returns an organization by id.
func (r *DirectoryRepository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	const query = `SELECT id, name, contact_email, created_at FROM organizations WHERE id = $1`
	var org models.Organization
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetInstructor returns an instructor by id.
func (r *DirectoryRepository) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	const query = `SELECT id, full_name, email, active, created_at FROM instructors WHERE id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

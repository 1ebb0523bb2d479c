package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRepositoryGetOrganization(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "contact_email", "created_at"}).
		AddRow("org-1", "Springfield Fire Dept", "chief@example.com", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, contact_email, created_at FROM organizations WHERE id = $1")).
		WithArgs("org-1").
		WillReturnRows(rows)

	org, err := repo.GetOrganization(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Springfield Fire Dept", org.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryGetInstructorMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, active, created_at FROM instructors WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetInstructor(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"forgecms-backend/shared/database/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestRemoveMemberRepointsSessionsToRemainingOrganization(t *testing.T) {
	db, mock := newMockDB(t)

	userID := uuid.New()
	leavingOrg := uuid.New()
	remainingOrg := uuid.New()
	membership := &models.Membership{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: leavingOrg,
		Role:           models.RoleEditor,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = .+ AND organization_id != .+ ORDER BY created_at ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "organization_id", "role", "created_at", "updated_at"}).
			AddRow(uuid.New(), userID, remainingOrg, models.RoleViewer, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "user_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "memberships"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RemoveMemberWithSessionCleanup(db, membership)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMemberDeletesSessionsWhenNoOrganizationRemains(t *testing.T) {
	db, mock := newMockDB(t)

	membership := &models.Membership{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           models.RoleEditor,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = .+ AND organization_id != .+ ORDER BY created_at ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "organization_id", "role", "created_at", "updated_at"}))
	mock.ExpectExec(`DELETE FROM "user_sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "memberships"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RemoveMemberWithSessionCleanup(db, membership)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMemberRollsBackOnSessionCleanupFailure(t *testing.T) {
	db, mock := newMockDB(t)

	membership := &models.Membership{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           models.RoleEditor,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE user_id = .+ AND organization_id != .+ ORDER BY created_at ASC`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := RemoveMemberWithSessionCleanup(db, membership)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

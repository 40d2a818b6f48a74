package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/board-collab-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func copyFixture(workspaceID uint64) (*models.Board, []models.List) {
	board := &models.Board{
		Title:       "Roadmap (Copy)",
		OwnerID:     1,
		WorkspaceID: &workspaceID,
	}
	lists := []models.List{
		{Title: "Todo", Color: "#ffffff", Position: 0},
		{Title: "Done", Color: "#ffffff", Position: 1},
	}
	return board, lists
}

func TestGormBoardRepository_CreateCopyRollsBackOnListFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBoardRepository(db)
	board, lists := copyFixture(7)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WithArgs(uint64(7), "Roadmap (Copy)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO "lists"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateCopy(context.Background(), board, lists, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCopyLists)
	assert.Contains(t, err.Error(), "disk full")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBoardRepository_CreateCopyTitleTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBoardRepository(db)
	board, lists := copyFixture(7)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WithArgs(uint64(7), "Roadmap (Copy)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateCopy(context.Background(), board, lists, true)
	assert.ErrorIs(t, err, ErrBoardTitleTaken)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBoardRepository_CreateCopyCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBoardRepository(db)
	board, lists := copyFixture(7)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO "lists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectQuery(`INSERT INTO "lists"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectCommit()

	err := repo.CreateCopy(context.Background(), board, lists, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), board.ID)
	require.Len(t, board.Lists, 2)
	assert.Equal(t, uint64(42), board.Lists[0].BoardID)
	assert.Equal(t, uint64(101), board.Lists[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

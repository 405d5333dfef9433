package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&RunModel{}), "failed to migrate tables")
	return db
}

func TestRunGorm(t *testing.T) {
	t.Parallel()

	repo := NewRunRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, usecase.ErrNoRuns)

	first := time.Date(2025, 1, 9, 6, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	require.NoError(t, repo.Save(ctx, entity.RunRecord{
		ID: "run-1", StartedAt: first, FinishedAt: first.Add(time.Minute), Status: entity.StatusSuccess,
		Report: entity.Report{RunID: "run-1", Status: entity.StatusSuccess},
	}))
	failed := entity.Report{
		RunID:       "run-2",
		Status:      entity.StatusFailed,
		FailedStage: entity.StateValidatingStaging,
		Validation:  &priceentity.ValidationReport{Blocking: true, Anomalies: priceentity.AnomalyCounts{Total: 1500}},
	}
	require.NoError(t, repo.Save(ctx, entity.RunRecord{
		ID: "run-2", StartedAt: second, FinishedAt: second.Add(time.Minute), Status: entity.StatusFailed,
		FailedStage: entity.StateValidatingStaging, Report: failed,
	}))

	got, err := repo.Latest(ctx)

	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
	assert.Equal(t, entity.StateValidatingStaging, got.FailedStage)
	assert.True(t, got.StartedAt.Equal(second))
	require.NotNil(t, got.Report.Validation)
	assert.Equal(t, int64(1500), got.Report.Validation.Anomalies.Total)
	assert.Nil(t, got.Report.Promote)
}

func TestRunGorm_SaveOverwritesSameID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewRunRepository(db)
	ctx := context.Background()
	at := time.Date(2025, 1, 9, 6, 0, 0, 0, time.UTC)

	rec := entity.RunRecord{ID: "run-1", StartedAt: at, FinishedAt: at, Status: entity.StatusRunning}
	require.NoError(t, repo.Save(ctx, rec))
	rec.Status = entity.StatusSuccess
	require.NoError(t, repo.Save(ctx, rec))

	var n int64
	require.NoError(t, db.Model(&RunModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, got.Status)
}

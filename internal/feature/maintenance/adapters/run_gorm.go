// Package adapters はmaintenanceフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

// RunModel は maintenance_runs テーブルの行です。レポートはJSONで保存します。
type RunModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	StartedAt   time.Time `gorm:"not null;index"`
	FinishedAt  time.Time `gorm:"not null"`
	Status      string    `gorm:"size:16;not null"`
	FailedStage string    `gorm:"size:32"`
	Report      string    `gorm:"type:text;not null"`
}

func (RunModel) TableName() string {
	return "maintenance_runs"
}

type runGorm struct {
	db *gorm.DB
}

var _ usecase.RunStore = (*runGorm)(nil)

// NewRunRepository は指定されたDB接続でrunGormリポジトリの新しいインスタンスを生成します。
func NewRunRepository(db *gorm.DB) *runGorm {
	return &runGorm{db: db}
}

// Save は実行記録を保存します。同じIDがあれば上書きします。
func (r *runGorm) Save(ctx context.Context, rec entity.RunRecord) error {
	body, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	m := RunModel{
		ID:          rec.ID,
		StartedAt:   rec.StartedAt.UTC(),
		FinishedAt:  rec.FinishedAt.UTC(),
		Status:      rec.Status,
		FailedStage: string(rec.FailedStage),
		Report:      string(body),
	}
	return db.Classify(r.db.WithContext(ctx).Save(&m).Error)
}

// Latest は最も新しく開始された実行記録を返します。記録がなければ usecase.ErrNoRuns を返します。
func (r *runGorm) Latest(ctx context.Context) (entity.RunRecord, error) {
	var m RunModel
	err := r.db.WithContext(ctx).Order("started_at DESC").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.RunRecord{}, usecase.ErrNoRuns
	}
	if err != nil {
		return entity.RunRecord{}, db.Classify(err)
	}

	var rep entity.Report
	if err := json.Unmarshal([]byte(m.Report), &rep); err != nil {
		return entity.RunRecord{}, fmt.Errorf("decode report %s: %w", m.ID, err)
	}
	return entity.RunRecord{
		ID:          m.ID,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
		Status:      m.Status,
		FailedStage: entity.State(m.FailedStage),
		Report:      rep,
	}, nil
}

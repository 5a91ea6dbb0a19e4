package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"menu-planner/internal/core/menu"
	"menu-planner/internal/pkg/common"
)

// StateRepository keeps the current plan as JSON in a single row.
type StateRepository struct {
	db *gorm.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load returns nil, nil when no plan was ever saved.
func (r *StateRepository) Load(ctx context.Context) (*menu.State, error) {
	var row StateModel
	err := r.db.WithContext(ctx).First(&row, "id = ?", CurrentStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st menu.State
	if err := common.ParseJSONBytes([]byte(row.Data), &st); err != nil {
		return nil, fmt.Errorf("failed to decode menu state: %w", err)
	}
	return &st, nil
}

// Save replaces the stored plan.
func (r *StateRepository) Save(ctx context.Context, st *menu.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode menu state: %w", err)
	}

	row := StateModel{ID: CurrentStateID, Data: string(data)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

// Ping checks the connection.
func (r *StateRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

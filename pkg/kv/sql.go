package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/coffeemarket/pkg/db"
)

// stateRow maps the client_state table created by the migrations.
type stateRow struct {
	DeviceID  string    `gorm:"column:device_id;primaryKey"`
	Key       string    `gorm:"column:state_key;primaryKey"`
	Value     string    `gorm:"column:state_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stateRow) TableName() string { return "client_state" }

// SQL stores state rows in sqlite or postgres, scoped to one device id.
type SQL struct {
	client   *db.Client
	deviceID string
	now      func() time.Time
}

func NewSQL(client *db.Client, deviceID string) *SQL {
	return &SQL{client: client, deviceID: deviceID, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var row stateRow
	err := s.client.DB().WithContext(ctx).
		Where("device_id = ? AND state_key = ?", s.deviceID, key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading state %q: %w", key, err)
	}
	return row.Value, nil
}

func (s *SQL) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := s.now().UTC()
	rows := make([]stateRow, 0, len(values))
	for k, v := range values {
		rows = append(rows, stateRow{DeviceID: s.deviceID, Key: k, Value: v, UpdatedAt: now})
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"state_value", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("writing state: %w", err)
		}
		return nil
	})
}

func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.client.DB().WithContext(ctx).
		Where("device_id = ? AND state_key IN ?", s.deviceID, keys).
		Delete(&stateRow{}).Error
	if err != nil {
		return fmt.Errorf("deleting state: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.client.Close()
}

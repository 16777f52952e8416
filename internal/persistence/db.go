package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/greencart/pkg/db"
	"github.com/angelmondragon/greencart/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore keeps the snapshot as one row of cart_snapshots.
type DBStore struct {
	client *db.Client
	key    string
}

func NewDBStore(client *db.Client, storageKey string) (*DBStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if storageKey == "" {
		return nil, fmt.Errorf("storage key required")
	}
	return &DBStore{client: client, key: storageKey}, nil
}

func (d *DBStore) Load(ctx context.Context) (*Snapshot, error) {
	var row models.CartSnapshot
	err := d.client.DB().WithContext(ctx).Where("storage_key = ?", d.key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return Decode([]byte(row.Payload))
}

func (d *DBStore) Save(ctx context.Context, snapshot Snapshot) error {
	raw, err := Encode(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := models.CartSnapshot{StorageKey: d.key, Payload: string(raw)}
	return d.client.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("save cart snapshot: %w", err)
		}
		return nil
	})
}

func (d *DBStore) Clear(ctx context.Context) error {
	err := d.client.DB().WithContext(ctx).
		Where("storage_key = ?", d.key).
		Delete(&models.CartSnapshot{}).Error
	if err != nil {
		return fmt.Errorf("clear cart snapshot: %w", err)
	}
	return nil
}

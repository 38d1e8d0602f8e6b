package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/vnkhanh/bizsim-server/models"
)

func (r *gormRepo) ListBulkOperations(ctx context.Context, f BulkFilter) ([]models.BulkOperation, error) {
	var ops []models.BulkOperation
	q := r.conn(ctx).Preload("User")
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Order("started_at DESC").Find(&ops).Error
	return ops, translate(err)
}

func (r *gormRepo) GetBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if err := r.conn(ctx).First(&op, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &op, nil
}

func (r *gormRepo) CreateBulkOperation(ctx context.Context, op *models.BulkOperation) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Create(op).Error)
}

func (r *gormRepo) UpdateBulkOperation(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.BulkOperation{}).Where("id = ?", id).Updates(updates).Error)
}

package repository

import (
	"context"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CierreRepository interface {
	// Create fails with ErrDuplicado when the commercial date is already closed.
	Create(ctx context.Context, c *model.CierreCaja) error
	FindByFecha(ctx context.Context, fecha time.Time) (*model.CierreCaja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	// List returns closings newest first.
	List(ctx context.Context, page, limit int) ([]model.CierreCaja, int64, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) Create(ctx context.Context, c *model.CierreCaja) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *cierreRepo) FindByFecha(ctx context.Context, fecha time.Time) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).Where("fecha_comercial = ?", fecha.Format("2006-01-02")).First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *cierreRepo) List(ctx context.Context, page, limit int) ([]model.CierreCaja, int64, error) {
	page, limit = normalizePage(page, limit)
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CierreCaja{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).Order("fecha_comercial DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&cierres).Error
	return cierres, total, err
}

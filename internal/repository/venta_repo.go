package repository

import (
	"context"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VentaFilter selects sales by instant range [Desde, Hasta).
type VentaFilter struct {
	Desde           time.Time
	Hasta           time.Time
	UsuarioID       *uuid.UUID
	IncluirAnuladas bool
}

type VentaRepository interface {
	// Create persists the sale with its items and pagos.
	Create(ctx context.Context, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) Create(ctx context.Context, v *model.Venta) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").Preload("Pagos").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("fecha >= ? AND fecha < ?", filter.Desde, filter.Hasta)
	if filter.UsuarioID != nil {
		q = q.Where("usuario_id = ?", *filter.UsuarioID)
	}
	if !filter.IncluirAnuladas {
		q = q.Where("estado <> ?", model.VentaAnulada)
	}
	var ventas []model.Venta
	err := q.Preload("Items").Preload("Pagos").Order("fecha ASC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	res := r.db.WithContext(ctx).Model(&model.Venta{}).Where("id = ?", id).Update("estado", estado)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

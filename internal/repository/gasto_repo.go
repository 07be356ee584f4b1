package repository

import (
	"context"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GastoRepository stores expense outflows.
type GastoRepository interface {
	Create(ctx context.Context, p *model.PagoGasto) error
	SumByFecha(ctx context.Context, fecha time.Time) (decimal.Decimal, error)
	ListByFecha(ctx context.Context, fecha time.Time) ([]model.PagoGasto, error)
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) Create(ctx context.Context, p *model.PagoGasto) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gastoRepo) SumByFecha(ctx context.Context, fecha time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.PagoGasto{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("fecha = ?", fecha.Format("2006-01-02")).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *gastoRepo) ListByFecha(ctx context.Context, fecha time.Time) ([]model.PagoGasto, error) {
	var pagos []model.PagoGasto
	err := r.db.WithContext(ctx).Where("fecha = ?", fecha.Format("2006-01-02")).
		Order("created_at ASC").Find(&pagos).Error
	return pagos, err
}

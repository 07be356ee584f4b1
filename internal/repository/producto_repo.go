package repository

import (
	"context"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products and their stock counter.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByBarcode(ctx context.Context, codigo string) (*model.Producto, error)
	// Descontar subtracts cantidad only when at least that much is available and
	// returns the new stock. It returns ErrSinStock and leaves the row untouched otherwise.
	Descontar(ctx context.Context, id uuid.UUID, cantidad int) (int, error)
	// Incrementar adds cantidad unconditionally and returns the new stock.
	Incrementar(ctx context.Context, id uuid.UUID, cantidad int) (int, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productoRepo) FindByBarcode(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	if err := r.db.WithContext(ctx).First(&p, "codigo_barras = ? AND activo = true", codigo).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Descontar is a compare-and-decrement: the row lock taken by UPDATE serializes
// concurrent reservations on the same product.
func (r *productoRepo) Descontar(ctx context.Context, id uuid.UUID, cantidad int) (int, error) {
	var p model.Producto
	res := r.db.WithContext(ctx).Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock_actual"}}}).
		Where("id = ? AND stock_actual >= ?", id, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return 0, err
		}
		return 0, ErrSinStock
	}
	return p.StockActual, nil
}

func (r *productoRepo) Incrementar(ctx context.Context, id uuid.UUID, cantidad int) (int, error) {
	var p model.Producto
	res := r.db.WithContext(ctx).Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock_actual"}}}).
		Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return p.StockActual, nil
}

package repository

import (
	"context"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditoFilter narrows account listings.
type CreditoFilter struct {
	Tipo    string
	Estado  string
	Cliente string
	Page    int
	Limit   int
}

type CreditoRepository interface {
	// BloquearCliente serializes find-or-create of the open account for a
	// (cliente, tipo) pair until the surrounding transaction ends.
	BloquearCliente(ctx context.Context, cliente, tipo string) error
	FindAbierto(ctx context.Context, cliente, tipo string) (*model.Credito, error)
	// FindByID loads the account with its items and abonos.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Credito, error)
	// FindForUpdate loads the bare account row and locks it for the transaction.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Credito, error)
	Create(ctx context.Context, c *model.Credito) error
	Update(ctx context.Context, c *model.Credito) error
	// Delete removes the account together with its items and abonos.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter CreditoFilter) ([]model.Credito, int64, error)

	CreateItem(ctx context.Context, it *model.CreditoItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.CreditoItem, error)
	UpdateItem(ctx context.Context, it *model.CreditoItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	CreateAbono(ctx context.Context, a *model.CreditoAbono) error
}

type creditoRepo struct{ db *gorm.DB }

func NewCreditoRepository(db *gorm.DB) CreditoRepository { return &creditoRepo{db: db} }

func (r *creditoRepo) BloquearCliente(ctx context.Context, cliente, tipo string) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "credito:"+tipo+":"+cliente).Error
}

func (r *creditoRepo) FindAbierto(ctx context.Context, cliente, tipo string) (*model.Credito, error) {
	var c model.Credito
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cliente = ? AND tipo = ? AND estado = ?", cliente, tipo, model.CreditoAbierto).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *creditoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Credito, error) {
	var c model.Credito
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC, created_at ASC") }).
		Preload("Abonos", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC, created_at ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *creditoRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Credito, error) {
	var c model.Credito
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *creditoRepo) Create(ctx context.Context, c *model.Credito) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *creditoRepo) Update(ctx context.Context, c *model.Credito) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r *creditoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("credito_id = ?", id).Delete(&model.CreditoItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("credito_id = ?", id).Delete(&model.CreditoAbono{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Credito{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *creditoRepo) List(ctx context.Context, filter CreditoFilter) ([]model.Credito, int64, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	q := r.db.WithContext(ctx).Model(&model.Credito{})
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Cliente != "" {
		q = q.Where("cliente ILIKE ?", "%"+filter.Cliente+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var creditos []model.Credito
	err := q.Order("fecha_apertura DESC, created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&creditos).Error
	return creditos, total, err
}

func (r *creditoRepo) CreateItem(ctx context.Context, it *model.CreditoItem) error {
	return translate(r.db.WithContext(ctx).Create(it).Error)
}

func (r *creditoRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.CreditoItem, error) {
	var it model.CreditoItem
	if err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r *creditoRepo) UpdateItem(ctx context.Context, it *model.CreditoItem) error {
	return translate(r.db.WithContext(ctx).Save(it).Error)
}

func (r *creditoRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.CreditoItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *creditoRepo) CreateAbono(ctx context.Context, a *model.CreditoAbono) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

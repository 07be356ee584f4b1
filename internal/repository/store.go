package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxIntentosTx = 5

// Store is the unit of work services run against. Tx runs fn inside a single
// serializable transaction; the Store passed to fn is bound to it, and any error
// returned by fn rolls every write back.
type Store interface {
	Productos() ProductoRepository
	Movimientos() MovimientoStockRepository
	Creditos() CreditoRepository
	Ventas() VentaRepository
	Cierres() CierreRepository
	Gastos() GastoRepository
	Tx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewStore returns the PostgreSQL-backed Store.
func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) Productos() ProductoRepository          { return &productoRepo{db: s.db} }
func (s *gormStore) Movimientos() MovimientoStockRepository { return &movimientoStockRepo{db: s.db} }
func (s *gormStore) Creditos() CreditoRepository            { return &creditoRepo{db: s.db} }
func (s *gormStore) Ventas() VentaRepository                { return &ventaRepo{db: s.db} }
func (s *gormStore) Cierres() CierreRepository              { return &cierreRepo{db: s.db} }
func (s *gormStore) Gastos() GastoRepository                { return &gastoRepo{db: s.db} }

// Tx retries the whole closure when PostgreSQL aborts it with a serialization
// failure or deadlock. fn must not keep side effects outside the transaction.
func (s *gormStore) Tx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	var err error
	for intento := 1; intento <= maxIntentosTx; intento++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormStore{db: tx, inTx: true})
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if !esReintentable(err) {
			return err
		}
		log.Warn().Err(err).Int("intento", intento).Msg("store: transaccion en conflicto, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(intento*intento) * 15 * time.Millisecond):
		}
	}
	return err
}

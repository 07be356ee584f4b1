// Package memstore is an in-memory repository.Store. Transactions run on a
// private copy of the state while holding a single mutex and are swapped in
// only when the closure succeeds, so rollbacks and serialization behave like
// the PostgreSQL store at a much coarser grain. Used by tests and demo mode.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	productos   map[uuid.UUID]model.Producto
	movimientos []model.MovimientoStock
	creditos    map[uuid.UUID]model.Credito
	items       []model.CreditoItem
	abonos      []model.CreditoAbono
	ventas      []model.Venta
	cierres     []model.CierreCaja
	gastos      []model.PagoGasto
}

func newState() *state {
	return &state{
		productos: make(map[uuid.UUID]model.Producto),
		creditos:  make(map[uuid.UUID]model.Credito),
	}
}

func (s *state) clone() *state {
	c := &state{
		productos:   make(map[uuid.UUID]model.Producto, len(s.productos)),
		creditos:    make(map[uuid.UUID]model.Credito, len(s.creditos)),
		movimientos: slices.Clone(s.movimientos),
		items:       slices.Clone(s.items),
		abonos:      slices.Clone(s.abonos),
		ventas:      slices.Clone(s.ventas),
		cierres:     slices.Clone(s.cierres),
		gastos:      slices.Clone(s.gastos),
	}
	for k, v := range s.productos {
		c.productos[k] = v
	}
	for k, v := range s.creditos {
		c.creditos[k] = v
	}
	return c
}

type db struct {
	mu sync.Mutex
	st *state
}

// Store implements repository.Store in memory.
type Store struct {
	db   *db
	st   *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{db: &db{st: newState()}}
}

func (s *Store) with(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.st)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.st)
}

// Tx runs fn against a copy of the state; the copy replaces the live state only if fn succeeds.
func (s *Store) Tx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.db.st.clone()
	if err := fn(&Store{db: s.db, st: work, inTx: true}); err != nil {
		return err
	}
	s.db.st = work
	return nil
}

func (s *Store) Productos() repository.ProductoRepository          { return productos{s} }
func (s *Store) Movimientos() repository.MovimientoStockRepository { return movimientos{s} }
func (s *Store) Creditos() repository.CreditoRepository            { return creditos{s} }
func (s *Store) Ventas() repository.VentaRepository                { return ventas{s} }
func (s *Store) Cierres() repository.CierreRepository              { return cierres{s} }
func (s *Store) Gastos() repository.GastoRepository                { return gastos{s} }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

func mismaFecha(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func paginate[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return page, limit
}

// ── Productos ────────────────────────────────────────────────────────────────

type productos struct{ s *Store }

func (r productos) Create(_ context.Context, p *model.Producto) error {
	return r.s.with(func(st *state) error {
		ensureID(&p.ID)
		stamp(&p.CreatedAt)
		p.UpdatedAt = p.CreatedAt
		if p.CodigoBarras != nil {
			for _, o := range st.productos {
				if o.CodigoBarras != nil && *o.CodigoBarras == *p.CodigoBarras {
					return repository.ErrDuplicado
				}
			}
		}
		st.productos[p.ID] = *p
		return nil
	})
}

func (r productos) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	var out model.Producto
	err := r.s.with(func(st *state) error {
		p, ok := st.productos[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r productos) FindByBarcode(_ context.Context, codigo string) (*model.Producto, error) {
	var out *model.Producto
	err := r.s.with(func(st *state) error {
		for _, p := range st.productos {
			if p.Activo && p.CodigoBarras != nil && *p.CodigoBarras == codigo {
				cp := p
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r productos) Descontar(_ context.Context, id uuid.UUID, cantidad int) (int, error) {
	var nuevo int
	err := r.s.with(func(st *state) error {
		p, ok := st.productos[id]
		if !ok {
			return repository.ErrNotFound
		}
		if p.StockActual < cantidad {
			return repository.ErrSinStock
		}
		p.StockActual -= cantidad
		p.UpdatedAt = time.Now().UTC()
		st.productos[id] = p
		nuevo = p.StockActual
		return nil
	})
	return nuevo, err
}

func (r productos) Incrementar(_ context.Context, id uuid.UUID, cantidad int) (int, error) {
	var nuevo int
	err := r.s.with(func(st *state) error {
		p, ok := st.productos[id]
		if !ok {
			return repository.ErrNotFound
		}
		p.StockActual += cantidad
		p.UpdatedAt = time.Now().UTC()
		st.productos[id] = p
		nuevo = p.StockActual
		return nil
	})
	return nuevo, err
}

// ── Movimientos de stock ─────────────────────────────────────────────────────

type movimientos struct{ s *Store }

func (r movimientos) Create(_ context.Context, m *model.MovimientoStock) error {
	return r.s.with(func(st *state) error {
		ensureID(&m.ID)
		stamp(&m.CreatedAt)
		st.movimientos = append(st.movimientos, *m)
		return nil
	})
}

func (r movimientos) List(_ context.Context, f repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	f.Normalize()
	var out []model.MovimientoStock
	err := r.s.with(func(st *state) error {
		for i := len(st.movimientos) - 1; i >= 0; i-- {
			m := st.movimientos[i]
			if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
				continue
			}
			if f.Tipo != "" && m.Tipo != f.Tipo {
				continue
			}
			out = append(out, m)
		}
		return nil
	})
	return paginate(out, f.Page, f.Limit), int64(len(out)), err
}

// ── Creditos ─────────────────────────────────────────────────────────────────

type creditos struct{ s *Store }

// BloquearCliente is a no-op: every transaction already holds the store mutex.
func (r creditos) BloquearCliente(context.Context, string, string) error { return nil }

func (r creditos) FindAbierto(_ context.Context, cliente, tipo string) (*model.Credito, error) {
	var out *model.Credito
	err := r.s.with(func(st *state) error {
		for _, c := range st.creditos {
			if c.Cliente == cliente && c.Tipo == tipo && c.Estado == model.CreditoAbierto {
				found := c
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r creditos) FindByID(_ context.Context, id uuid.UUID) (*model.Credito, error) {
	var out model.Credito
	err := r.s.with(func(st *state) error {
		c, ok := st.creditos[id]
		if !ok {
			return repository.ErrNotFound
		}
		c.Items = nil
		c.Abonos = nil
		for _, it := range st.items {
			if it.CreditoID == id {
				c.Items = append(c.Items, it)
			}
		}
		for _, a := range st.abonos {
			if a.CreditoID == id {
				c.Abonos = append(c.Abonos, a)
			}
		}
		sort.SliceStable(c.Items, func(i, j int) bool { return c.Items[i].Fecha.Before(c.Items[j].Fecha) })
		sort.SliceStable(c.Abonos, func(i, j int) bool { return c.Abonos[i].Fecha.Before(c.Abonos[j].Fecha) })
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r creditos) FindForUpdate(_ context.Context, id uuid.UUID) (*model.Credito, error) {
	var out model.Credito
	err := r.s.with(func(st *state) error {
		c, ok := st.creditos[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r creditos) Create(_ context.Context, c *model.Credito) error {
	return r.s.with(func(st *state) error {
		ensureID(&c.ID)
		stamp(&c.CreatedAt)
		c.UpdatedAt = c.CreatedAt
		if c.Estado == model.CreditoAbierto {
			for _, o := range st.creditos {
				if o.Cliente == c.Cliente && o.Tipo == c.Tipo && o.Estado == model.CreditoAbierto {
					return repository.ErrDuplicado
				}
			}
		}
		row := *c
		row.Items, row.Abonos = nil, nil
		st.creditos[c.ID] = row
		return nil
	})
}

func (r creditos) Update(_ context.Context, c *model.Credito) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.creditos[c.ID]; !ok {
			return repository.ErrNotFound
		}
		if c.Estado == model.CreditoAbierto {
			for id, o := range st.creditos {
				if id != c.ID && o.Cliente == c.Cliente && o.Tipo == c.Tipo && o.Estado == model.CreditoAbierto {
					return repository.ErrDuplicado
				}
			}
		}
		c.UpdatedAt = time.Now().UTC()
		row := *c
		row.Items, row.Abonos = nil, nil
		st.creditos[c.ID] = row
		return nil
	})
}

func (r creditos) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.creditos[id]; !ok {
			return repository.ErrNotFound
		}
		st.items = slices.DeleteFunc(st.items, func(it model.CreditoItem) bool { return it.CreditoID == id })
		st.abonos = slices.DeleteFunc(st.abonos, func(a model.CreditoAbono) bool { return a.CreditoID == id })
		delete(st.creditos, id)
		return nil
	})
}

func (r creditos) List(_ context.Context, f repository.CreditoFilter) ([]model.Credito, int64, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	var out []model.Credito
	err := r.s.with(func(st *state) error {
		for _, c := range st.creditos {
			if f.Tipo != "" && c.Tipo != f.Tipo {
				continue
			}
			if f.Estado != "" && c.Estado != f.Estado {
				continue
			}
			if f.Cliente != "" && !strings.Contains(c.Cliente, strings.ToUpper(f.Cliente)) {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaApertura.Equal(out[j].FechaApertura) {
			return out[i].FechaApertura.After(out[j].FechaApertura)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, f.Page, f.Limit), int64(len(out)), err
}

func (r creditos) CreateItem(_ context.Context, it *model.CreditoItem) error {
	return r.s.with(func(st *state) error {
		ensureID(&it.ID)
		stamp(&it.CreatedAt)
		st.items = append(st.items, *it)
		return nil
	})
}

func (r creditos) FindItemByID(_ context.Context, id uuid.UUID) (*model.CreditoItem, error) {
	var out *model.CreditoItem
	err := r.s.with(func(st *state) error {
		for _, it := range st.items {
			if it.ID == id {
				found := it
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r creditos) UpdateItem(_ context.Context, it *model.CreditoItem) error {
	return r.s.with(func(st *state) error {
		for i := range st.items {
			if st.items[i].ID == it.ID {
				st.items[i] = *it
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

func (r creditos) DeleteItem(_ context.Context, id uuid.UUID) error {
	return r.s.with(func(st *state) error {
		n := len(st.items)
		st.items = slices.DeleteFunc(st.items, func(it model.CreditoItem) bool { return it.ID == id })
		if len(st.items) == n {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r creditos) CreateAbono(_ context.Context, a *model.CreditoAbono) error {
	return r.s.with(func(st *state) error {
		ensureID(&a.ID)
		stamp(&a.CreatedAt)
		st.abonos = append(st.abonos, *a)
		return nil
	})
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type ventas struct{ s *Store }

func (r ventas) Create(_ context.Context, v *model.Venta) error {
	return r.s.with(func(st *state) error {
		ensureID(&v.ID)
		stamp(&v.CreatedAt)
		for i := range v.Items {
			ensureID(&v.Items[i].ID)
			v.Items[i].VentaID = v.ID
		}
		for i := range v.Pagos {
			ensureID(&v.Pagos[i].ID)
			v.Pagos[i].VentaID = v.ID
		}
		row := *v
		row.Items = slices.Clone(v.Items)
		row.Pagos = slices.Clone(v.Pagos)
		st.ventas = append(st.ventas, row)
		return nil
	})
}

func (r ventas) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	var out *model.Venta
	err := r.s.with(func(st *state) error {
		for _, v := range st.ventas {
			if v.ID == id {
				found := v
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r ventas) List(_ context.Context, f repository.VentaFilter) ([]model.Venta, error) {
	var out []model.Venta
	err := r.s.with(func(st *state) error {
		for _, v := range st.ventas {
			if v.Fecha.Before(f.Desde) || !v.Fecha.Before(f.Hasta) {
				continue
			}
			if f.UsuarioID != nil && (v.UsuarioID == nil || *v.UsuarioID != *f.UsuarioID) {
				continue
			}
			if !f.IncluirAnuladas && v.Estado == model.VentaAnulada {
				continue
			}
			out = append(out, v)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, err
}

func (r ventas) UpdateEstado(_ context.Context, id uuid.UUID, estado string) error {
	return r.s.with(func(st *state) error {
		for i := range st.ventas {
			if st.ventas[i].ID == id {
				st.ventas[i].Estado = estado
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

// ── Cierres ──────────────────────────────────────────────────────────────────

type cierres struct{ s *Store }

func (r cierres) Create(_ context.Context, c *model.CierreCaja) error {
	return r.s.with(func(st *state) error {
		for _, o := range st.cierres {
			if mismaFecha(o.FechaComercial, c.FechaComercial) {
				return repository.ErrDuplicado
			}
		}
		ensureID(&c.ID)
		st.cierres = append(st.cierres, *c)
		return nil
	})
}

func (r cierres) FindByFecha(_ context.Context, fecha time.Time) (*model.CierreCaja, error) {
	var out *model.CierreCaja
	err := r.s.with(func(st *state) error {
		for _, c := range st.cierres {
			if mismaFecha(c.FechaComercial, fecha) {
				found := c
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r cierres) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var out *model.CierreCaja
	err := r.s.with(func(st *state) error {
		for _, c := range st.cierres {
			if c.ID == id {
				found := c
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r cierres) List(_ context.Context, page, limit int) ([]model.CierreCaja, int64, error) {
	page, limit = normalizePage(page, limit)
	var all []model.CierreCaja
	err := r.s.with(func(st *state) error {
		all = slices.Clone(st.cierres)
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].FechaComercial.After(all[j].FechaComercial) })
	return paginate(all, page, limit), int64(len(all)), err
}

// ── Gastos ───────────────────────────────────────────────────────────────────

type gastos struct{ s *Store }

func (r gastos) Create(_ context.Context, p *model.PagoGasto) error {
	return r.s.with(func(st *state) error {
		ensureID(&p.ID)
		stamp(&p.CreatedAt)
		st.gastos = append(st.gastos, *p)
		return nil
	})
}

func (r gastos) SumByFecha(_ context.Context, fecha time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.s.with(func(st *state) error {
		for _, g := range st.gastos {
			if mismaFecha(g.Fecha, fecha) {
				total = total.Add(g.Monto)
			}
		}
		return nil
	})
	return total, err
}

func (r gastos) ListByFecha(_ context.Context, fecha time.Time) ([]model.PagoGasto, error) {
	var out []model.PagoGasto
	err := r.s.with(func(st *state) error {
		for _, g := range st.gastos {
			if mismaFecha(g.Fecha, fecha) {
				out = append(out, g)
			}
		}
		return nil
	})
	return out, err
}

// Package jornada resolves the commercial day ("jornada comercial") an instant
// belongs to. A commercial day starts at a fixed local hour instead of midnight,
// so sales rung up at 02:00 still count for the previous calendar date.
package jornada

import (
	"fmt"
	"time"
)

const layoutFecha = "2006-01-02"

// Dia is a commercial day: its business date plus the UTC instant range [Inicio, Fin).
type Dia struct {
	Fecha  time.Time // date at 00:00 UTC, only Y/M/D are meaningful
	Inicio time.Time
	Fin    time.Time
}

// String formats the business date as YYYY-MM-DD.
func (d Dia) String() string { return d.Fecha.Format(layoutFecha) }

// Contiene reports whether t falls in [Inicio, Fin).
func (d Dia) Contiene(t time.Time) bool {
	return !t.Before(d.Inicio) && t.Before(d.Fin)
}

// Resolver maps instants to commercial days. It is immutable and safe for concurrent use.
type Resolver struct {
	loc        *time.Location
	horaInicio int
	now        func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver builds a resolver for the given business location and boundary hour (0-23).
func NewResolver(loc *time.Location, horaInicio int, opts ...Option) (*Resolver, error) {
	if loc == nil {
		return nil, fmt.Errorf("jornada: location requerida")
	}
	if horaInicio < 0 || horaInicio > 23 {
		return nil, fmt.Errorf("jornada: hora de inicio invalida %d", horaInicio)
	}
	r := &Resolver{loc: loc, horaInicio: horaInicio, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Location returns the business location.
func (r *Resolver) Location() *time.Location { return r.loc }

// HoraInicio returns the boundary hour.
func (r *Resolver) HoraInicio() int { return r.horaInicio }

// Resolve returns the commercial day containing t. An instant exactly at the
// boundary belongs to the new day. The day is chosen against the range itself,
// so a boundary hour skipped by a DST gap still yields a Dia that contains t.
func (r *Resolver) Resolve(t time.Time) Dia {
	local := t.In(r.loc)
	fecha := Fecha(local.Year(), local.Month(), local.Day())
	inicio, fin := r.RangeFor(fecha)
	switch {
	case t.Before(inicio):
		fecha = fecha.AddDate(0, 0, -1)
		inicio, fin = r.RangeFor(fecha)
	case !t.Before(fin):
		// time.Date may move a skipped midnight boundary back into the previous local date.
		fecha = fecha.AddDate(0, 0, 1)
		inicio, fin = r.RangeFor(fecha)
	}
	return Dia{Fecha: fecha, Inicio: inicio, Fin: fin}
}

// RangeFor returns the UTC range [start, end) of the commercial day on fecha.
// End is the next day's boundary in local time, so on DST transitions a day
// spans 23h or 25h and no instant is left without a day.
func (r *Resolver) RangeFor(fecha time.Time) (time.Time, time.Time) {
	y, m, d := fecha.Date()
	inicio := time.Date(y, m, d, r.horaInicio, 0, 0, 0, r.loc)
	fin := time.Date(y, m, d+1, r.horaInicio, 0, 0, 0, r.loc)
	return inicio.UTC(), fin.UTC()
}

// Dia returns the full commercial day for a business date.
func (r *Resolver) Dia(fecha time.Time) Dia {
	f := Normalizar(fecha)
	inicio, fin := r.RangeFor(f)
	return Dia{Fecha: f, Inicio: inicio, Fin: fin}
}

// Hoy resolves the current instant.
func (r *Resolver) Hoy() Dia { return r.Resolve(r.now()) }

// Ahora returns the resolver's current instant.
func (r *Resolver) Ahora() time.Time { return r.now() }

// UltimosDias returns the n commercial dates ending today, oldest first.
func (r *Resolver) UltimosDias(n int) []time.Time {
	return DiasHasta(r.Hoy().Fecha, n)
}

// DiasHasta returns the n dates ending at fin, oldest first.
func DiasHasta(fin time.Time, n int) []time.Time {
	fin = Normalizar(fin)
	out := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, fin.AddDate(0, 0, -i))
	}
	return out
}

// Fecha builds a business date value.
func Fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalizar drops the time of day, keeping the calendar date as written.
func Normalizar(t time.Time) time.Time {
	return Fecha(t.Year(), t.Month(), t.Day())
}

// ParseFecha parses YYYY-MM-DD.
func ParseFecha(s string) (time.Time, error) {
	t, err := time.Parse(layoutFecha, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha invalida %q, se espera AAAA-MM-DD", s)
	}
	return t, nil
}

// FormatFecha formats a business date as YYYY-MM-DD.
func FormatFecha(t time.Time) string { return t.Format(layoutFecha) }

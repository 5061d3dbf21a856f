package service_test

// In-memory repository fakes shared by the service tests. The *Tx methods
// ignore the tx handle; runTx passes nil when the repo reports a nil DB.

import (
	"context"
	"time"

	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── CajaRepository ───────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	sesiones    map[uuid.UUID]*model.Caja
	movimientos []model.MovimientoCaja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{sesiones: make(map[uuid.UUID]*model.Caja)}
}

func (r *fakeCajaRepo) CreateSesion(_ context.Context, c *model.Caja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.sesiones[c.ID] = c
	return nil
}

func (r *fakeCajaRepo) FindAbierta(_ context.Context, usuarioID, sucursalID uuid.UUID) (*model.Caja, error) {
	for _, c := range r.sesiones {
		if c.UsuarioID == usuarioID && c.SucursalID == sucursalID && c.Estado == "abierta" {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	copia.Movimientos = nil
	for _, m := range r.movimientos {
		if m.CajaID == id {
			copia.Movimientos = append(copia.Movimientos, m)
		}
	}
	return &copia, nil
}

func (r *fakeCajaRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

// CerrarSesionTx mirrors the conditional UPDATE: it only applies when the
// stored row is still abierta, reporting rows affected.
func (r *fakeCajaRepo) CerrarSesionTx(_ *gorm.DB, c *model.Caja) (int64, error) {
	stored, ok := r.sesiones[c.ID]
	if !ok || stored.Estado != "abierta" {
		return 0, nil
	}
	stored.MontoFinal = c.MontoFinal
	stored.Desvio = c.Desvio
	stored.TotalVentas = c.TotalVentas
	stored.Estado = c.Estado
	stored.ClosedAt = c.ClosedAt
	return 1, nil
}

func (r *fakeCajaRepo) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	return r.CreateMovimientoTx(nil, m)
}

func (r *fakeCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.CajaID == cajaID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, sucursalID uuid.UUID, page, limit int) ([]model.Caja, int64, error) {
	var all []model.Caja
	for _, c := range r.sesiones {
		if c.SucursalID == sucursalID {
			all = append(all, *c)
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

// ── ClienteRepository ────────────────────────────────────────────────────────

type fakeClienteRepo struct {
	clientes      map[uuid.UUID]*model.Cliente
	transacciones []model.TransaccionCliente
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *fakeClienteRepo) agregar(c *model.Cliente) *model.Cliente {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return c
}

func (r *fakeClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.agregar(c)
	return nil
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeClienteRepo) List(_ context.Context, empresaID uuid.UUID, nombre string) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.EmpresaID == empresaID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

func (r *fakeClienteRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeClienteRepo) UpdateSaldoTx(_ *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error {
	if c, ok := r.clientes[id]; ok {
		c.SaldoActual = saldo
	}
	return nil
}

func (r *fakeClienteRepo) CreateTransaccionTx(_ *gorm.DB, t *model.TransaccionCliente) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	r.transacciones = append(r.transacciones, *t)
	return nil
}

func (r *fakeClienteRepo) ListTransacciones(_ context.Context, clienteID uuid.UUID) ([]model.TransaccionCliente, error) {
	var out []model.TransaccionCliente
	for _, t := range r.transacciones {
		if t.ClienteID == clienteID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeClienteRepo) SumLedger(_ context.Context, clienteID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.transacciones {
		if t.ClienteID != clienteID {
			continue
		}
		switch t.Tipo {
		case "cargo":
			sum = sum.Add(t.Monto)
		case "abono":
			sum = sum.Sub(t.Monto)
		}
	}
	return sum, nil
}

func (r *fakeClienteRepo) DB() *gorm.DB { return nil }

var _ repository.ClienteRepository = (*fakeClienteRepo)(nil)

// ── StockRepository ──────────────────────────────────────────────────────────

type fakeStockRepo struct {
	filas       map[uuid.UUID]*model.SucursalProducto
	movimientos []model.MovimientoStock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{filas: make(map[uuid.UUID]*model.SucursalProducto)}
}

func (r *fakeStockRepo) seed(sucursalID, productoID uuid.UUID, stock, minimo int) *model.SucursalProducto {
	sp := &model.SucursalProducto{
		ID:          uuid.New(),
		SucursalID:  sucursalID,
		ProductoID:  productoID,
		Stock:       stock,
		StockMinimo: minimo,
	}
	r.filas[sp.ID] = sp
	return sp
}

func (r *fakeStockRepo) buscar(sucursalID, productoID uuid.UUID) *model.SucursalProducto {
	for _, sp := range r.filas {
		if sp.SucursalID == sucursalID && sp.ProductoID == productoID {
			return sp
		}
	}
	return nil
}

func (r *fakeStockRepo) FindForUpdateTx(_ *gorm.DB, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error) {
	if sp := r.buscar(sucursalID, productoID); sp != nil {
		copia := *sp
		return &copia, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStockRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if sp, ok := r.filas[id]; ok {
		sp.Stock += delta
	}
	return nil
}

func (r *fakeStockRepo) UpsertTx(_ *gorm.DB, sp *model.SucursalProducto) error {
	if existing := r.buscar(sp.SucursalID, sp.ProductoID); existing != nil {
		existing.Stock = sp.Stock
		existing.StockMinimo = sp.StockMinimo
		return nil
	}
	r.seed(sp.SucursalID, sp.ProductoID, sp.Stock, sp.StockMinimo)
	return nil
}

func (r *fakeStockRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeStockRepo) Find(_ context.Context, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error) {
	if sp := r.buscar(sucursalID, productoID); sp != nil {
		return sp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStockRepo) ListPorProducto(_ context.Context, productoID uuid.UUID) ([]model.SucursalProducto, error) {
	var out []model.SucursalProducto
	for _, sp := range r.filas {
		if sp.ProductoID == productoID {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) Upsert(_ context.Context, sp *model.SucursalProducto) error {
	return r.UpsertTx(nil, sp)
}

func (r *fakeStockRepo) ListBajoMinimo(_ context.Context, _ uuid.UUID) ([]model.SucursalProducto, error) {
	var out []model.SucursalProducto
	for _, sp := range r.filas {
		if sp.Stock < sp.StockMinimo {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) ListMovimientos(_ context.Context, sucursalID, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.SucursalID == sucursalID && m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*fakeStockRepo)(nil)

// ── VentaRepository ──────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	ventas     map[uuid.UUID]*model.Venta
	nextTicket int
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	if v, ok := r.ventas[id]; ok {
		v.Estado = estado
	}
	return nil
}

func (r *fakeVentaRepo) NextTicketNumber(_ *gorm.DB) (int, error) {
	r.nextTicket++
	return r.nextTicket, nil
}

func (r *fakeVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if filter.Estado != "all" && v.Estado != filter.Estado {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVentaRepo) ListByCaja(_ context.Context, cajaID uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.CajaID == cajaID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*fakeVentaRepo)(nil)

// ── ProductoRepository ───────────────────────────────────────────────────────

type fakeProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *fakeProductoRepo) agregar(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *fakeProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.agregar(p)
	return nil
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProductoRepo) FindByBarcode(_ context.Context, empresaID uuid.UUID, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.EmpresaID == empresaID && p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductoRepo) List(_ context.Context, empresaID uuid.UUID, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.EmpresaID == empresaID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *fakeProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *fakeProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *fakeProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*fakeProductoRepo)(nil)

// ── UsuarioRepository ────────────────────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) List(_ context.Context, empresaID uuid.UUID, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.EmpresaID != empresaID {
			continue
		}
		if !incluirInactivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func (r *fakeUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = true
	}
	return nil
}

func (r *fakeUsuarioRepo) FindManagement(_ context.Context, empresaID uuid.UUID) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.EmpresaID == empresaID && u.Activo && (u.Rol == "supervisor" || u.Rol == "administrador") {
			out = append(out, *u)
		}
	}
	return out, nil
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

// ── SucursalRepository ───────────────────────────────────────────────────────

type fakeSucursalRepo struct {
	sucursales map[uuid.UUID]*model.Sucursal
	empresas   map[uuid.UUID]*model.Empresa
}

func newFakeSucursalRepo() *fakeSucursalRepo {
	return &fakeSucursalRepo{
		sucursales: make(map[uuid.UUID]*model.Sucursal),
		empresas:   make(map[uuid.UUID]*model.Empresa),
	}
}

func (r *fakeSucursalRepo) Create(_ context.Context, s *model.Sucursal) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sucursales[s.ID] = s
	return nil
}

func (r *fakeSucursalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sucursal, error) {
	s, ok := r.sucursales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSucursalRepo) List(_ context.Context, empresaID uuid.UUID) ([]model.Sucursal, error) {
	var out []model.Sucursal
	for _, s := range r.sucursales {
		if s.EmpresaID == empresaID && s.Activo {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSucursalRepo) Update(_ context.Context, s *model.Sucursal) error {
	r.sucursales[s.ID] = s
	return nil
}

func (r *fakeSucursalRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if s, ok := r.sucursales[id]; ok {
		s.Activo = false
	}
	return nil
}

func (r *fakeSucursalRepo) FindEmpresa(_ context.Context, id uuid.UUID) (*model.Empresa, error) {
	e, ok := r.empresas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeSucursalRepo) UpdateEmpresa(_ context.Context, e *model.Empresa) error {
	r.empresas[e.ID] = e
	return nil
}

func (r *fakeSucursalRepo) ListEmpresas(_ context.Context) ([]model.Empresa, error) {
	var out []model.Empresa
	for _, e := range r.empresas {
		if e.Activo {
			out = append(out, *e)
		}
	}
	return out, nil
}

var _ repository.SucursalRepository = (*fakeSucursalRepo)(nil)

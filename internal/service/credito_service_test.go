package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type creditoFixture struct {
	clientes *fakeClienteRepo
	cajas    *fakeCajaRepo
	svc      service.CreditoService
}

func newCreditoFixture() *creditoFixture {
	f := &creditoFixture{
		clientes: newFakeClienteRepo(),
		cajas:    newFakeCajaRepo(),
	}
	f.svc = service.NewCreditoService(f.clientes, f.cajas)
	return f
}

func (f *creditoFixture) cliente(empresaID uuid.UUID, limite, saldo string) *model.Cliente {
	return f.clientes.agregar(&model.Cliente{
		EmpresaID:     empresaID,
		Nombre:        "Juan Pérez",
		LimiteCredito: d(limite),
		SaldoActual:   d(saldo),
		Activo:        true,
	})
}

func (f *creditoFixture) abrirCaja(actor service.Actor) *model.Caja {
	caja := &model.Caja{
		UsuarioID:  actor.UsuarioID,
		SucursalID: *actor.SucursalID,
		Estado:     "abierta",
	}
	_ = f.cajas.CreateSesion(context.Background(), caja)
	return caja
}

func TestCargar_ActualizaSaldoYLedger(t *testing.T) {
	f := newCreditoFixture()
	cliente := f.cliente(uuid.New(), "10000.00", "1000.00")
	usuarioID := uuid.New()
	ventaID := uuid.New()

	tr, err := f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("2500.00"), &ventaID, usuarioID, "Venta #42 a crédito")
	require.NoError(t, err)

	assert.Equal(t, "cargo", tr.Tipo)
	assertDec(t, "1000.00", tr.SaldoAnterior)
	assertDec(t, "3500.00", tr.SaldoNuevo)
	require.NotNil(t, tr.VentaID)
	assert.Equal(t, ventaID, *tr.VentaID)
	assertDec(t, "3500.00", cliente.SaldoActual)
}

func TestCargar_RechazaSobreLimite(t *testing.T) {
	f := newCreditoFixture()
	cliente := f.cliente(uuid.New(), "5000.00", "4000.00")

	_, err := f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("1000.01"), nil, uuid.New(), "cargo")
	assert.ErrorIs(t, err, service.ErrLimiteCreditoExcedido)
	// Check-before-mutate: no ledger entry, balance untouched.
	assert.Empty(t, f.clientes.transacciones)
	assertDec(t, "4000.00", cliente.SaldoActual)

	// Charging exactly up to the limit is allowed.
	_, err = f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("1000.00"), nil, uuid.New(), "cargo")
	assert.NoError(t, err)
	assertDec(t, "5000.00", cliente.SaldoActual)
}

func TestCargar_ClienteInactivoODesconocido(t *testing.T) {
	f := newCreditoFixture()

	_, err := f.svc.CargarTx(nil, uuid.New(), uuid.New(), d("100"), nil, uuid.New(), "cargo")
	assert.ErrorIs(t, err, service.ErrCreditoDenegado)

	cliente := f.cliente(uuid.New(), "5000.00", "0")
	cliente.Activo = false
	_, err = f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("100"), nil, uuid.New(), "cargo")
	assert.ErrorIs(t, err, service.ErrCreditoDenegado)
}

func TestCargar_MontoInvalido(t *testing.T) {
	f := newCreditoFixture()
	cliente := f.cliente(uuid.New(), "5000.00", "0")

	_, err := f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("0"), nil, uuid.New(), "cargo")
	assert.ErrorIs(t, err, service.ErrMontoInvalido)
	_, err = f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("-10"), nil, uuid.New(), "cargo")
	assert.ErrorIs(t, err, service.ErrMontoInvalido)
}

func TestCobrarAbono_LedgerYMovimientoDeCaja(t *testing.T) {
	f := newCreditoFixture()
	actor := cajeroActor(uuid.New())
	cliente := f.cliente(actor.EmpresaID, "10000.00", "3000.00")
	caja := f.abrirCaja(actor)

	tr, err := f.svc.CobrarAbono(context.Background(), actor, cliente.ID, d("1200.00"), nil)
	require.NoError(t, err)

	assert.Equal(t, "abono", tr.Tipo)
	assertDec(t, "3000.00", tr.SaldoAnterior)
	assertDec(t, "1800.00", tr.SaldoNuevo)
	assertDec(t, "1800.00", cliente.SaldoActual)

	// The companion cash movement lands on the open caja, tagged so the
	// arqueo can split it out from other manual ingresos.
	movs, err := f.cajas.ListMovimientos(context.Background(), caja.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "ingreso", movs[0].Tipo)
	assertDec(t, "1200.00", movs[0].Monto)
	assert.True(t, strings.HasPrefix(movs[0].Descripcion, model.AbonoClientePrefix))
	assert.Contains(t, movs[0].Descripcion, cliente.Nombre)
	assert.True(t, movs[0].EsAbonoCliente())
}

func TestCobrarAbono_SinCajaAbierta(t *testing.T) {
	f := newCreditoFixture()
	actor := cajeroActor(uuid.New())
	cliente := f.cliente(actor.EmpresaID, "10000.00", "3000.00")

	_, err := f.svc.CobrarAbono(context.Background(), actor, cliente.ID, d("100"), nil)
	assert.ErrorIs(t, err, service.ErrSinCajaAbierta)
}

func TestCobrarAbono_RechazaSobrepago(t *testing.T) {
	f := newCreditoFixture()
	actor := cajeroActor(uuid.New())
	cliente := f.cliente(actor.EmpresaID, "10000.00", "500.00")
	f.abrirCaja(actor)

	_, err := f.svc.CobrarAbono(context.Background(), actor, cliente.ID, d("500.01"), nil)
	assert.ErrorIs(t, err, service.ErrMontoExcedeSaldo)
	assertDec(t, "500.00", cliente.SaldoActual)

	// Paying the debt down to zero exactly is fine.
	tr, err := f.svc.CobrarAbono(context.Background(), actor, cliente.ID, d("500.00"), nil)
	require.NoError(t, err)
	assert.True(t, tr.SaldoNuevo.IsZero())
}

// cierreTrasConsultaCajaRepo simulates a concurrent close landing right
// after the open-session lookup: the caller still sees "abierta" but the
// stored row is already "cerrada" by the time the transaction starts.
type cierreTrasConsultaCajaRepo struct {
	*fakeCajaRepo
}

func (r *cierreTrasConsultaCajaRepo) FindAbierta(ctx context.Context, usuarioID, sucursalID uuid.UUID) (*model.Caja, error) {
	caja, err := r.fakeCajaRepo.FindAbierta(ctx, usuarioID, sucursalID)
	if err != nil {
		return nil, err
	}
	copia := *caja
	caja.Estado = "cerrada"
	return &copia, nil
}

func TestCobrarAbono_CajaCerradaTrasLaConsulta(t *testing.T) {
	f := newCreditoFixture()
	svc := service.NewCreditoService(f.clientes, &cierreTrasConsultaCajaRepo{fakeCajaRepo: f.cajas})
	actor := cajeroActor(uuid.New())
	cliente := f.cliente(actor.EmpresaID, "10000.00", "500.00")
	f.abrirCaja(actor)

	_, err := svc.CobrarAbono(context.Background(), actor, cliente.ID, d("100"), nil)
	assert.ErrorIs(t, err, service.ErrSinCajaAbierta)
	// Neither side of the composite lands: no movement, balance untouched.
	assert.Empty(t, f.cajas.movimientos)
	assert.Empty(t, f.clientes.transacciones)
	assertDec(t, "500.00", cliente.SaldoActual)
}

func TestRecalcularSaldo_PliegaElLedger(t *testing.T) {
	f := newCreditoFixture()
	cliente := f.cliente(uuid.New(), "10000.00", "0")
	usuarioID := uuid.New()

	_, err := f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("3000.00"), nil, usuarioID, "cargo 1")
	require.NoError(t, err)
	_, err = f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("1500.00"), nil, usuarioID, "cargo 2")
	require.NoError(t, err)

	// Simulate projection drift.
	cliente.SaldoActual = d("9999.00")

	actor := service.Actor{UsuarioID: usuarioID, EmpresaID: cliente.EmpresaID, Rol: "supervisor"}
	saldo, err := f.svc.RecalcularSaldo(context.Background(), actor, cliente.ID)
	require.NoError(t, err)
	assertDec(t, "4500.00", saldo)
	assertDec(t, "4500.00", cliente.SaldoActual)

	// A supervisor from another empresa cannot trigger the rebuild.
	_, err = f.svc.RecalcularSaldo(context.Background(), supervisorActor(), cliente.ID)
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)
}

func TestEstadoCuenta(t *testing.T) {
	f := newCreditoFixture()
	cliente := f.cliente(uuid.New(), "10000.00", "0")
	otro := f.cliente(cliente.EmpresaID, "10000.00", "0")
	usuarioID := uuid.New()

	_, err := f.svc.CargarTx(nil, cliente.EmpresaID, cliente.ID, d("100.00"), nil, usuarioID, "cargo")
	require.NoError(t, err)
	_, err = f.svc.CargarTx(nil, otro.EmpresaID, otro.ID, d("200.00"), nil, usuarioID, "cargo ajeno")
	require.NoError(t, err)

	actor := service.Actor{UsuarioID: usuarioID, EmpresaID: cliente.EmpresaID, Rol: "cajero"}
	c, transacciones, err := f.svc.EstadoCuenta(context.Background(), actor, cliente.ID)
	require.NoError(t, err)
	assert.Equal(t, cliente.ID, c.ID)
	require.Len(t, transacciones, 1)
	assertDec(t, "100.00", transacciones[0].Monto)
}

// The credit ledger is empresa-scoped end to end: a cliente belonging to a
// different empresa cannot be charged, collected from, or even read.
func TestCredito_ClienteDeOtraEmpresa(t *testing.T) {
	f := newCreditoFixture()
	actor := cajeroActor(uuid.New())
	ajeno := f.cliente(uuid.New(), "10000.00", "500.00")
	f.abrirCaja(actor)

	_, err := f.svc.CargarTx(nil, actor.EmpresaID, ajeno.ID, d("100"), nil, actor.UsuarioID, "cargo")
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)
	assert.Empty(t, f.clientes.transacciones)
	assertDec(t, "500.00", ajeno.SaldoActual)

	_, err = f.svc.CobrarAbono(context.Background(), actor, ajeno.ID, d("100"), nil)
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)
	assert.Empty(t, f.cajas.movimientos)
	assertDec(t, "500.00", ajeno.SaldoActual)

	_, _, err = f.svc.EstadoCuenta(context.Background(), actor, ajeno.ID)
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)
}

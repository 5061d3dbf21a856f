package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cajeroActor(sucursalID uuid.UUID) service.Actor {
	return service.Actor{
		UsuarioID:  uuid.New(),
		EmpresaID:  uuid.New(),
		SucursalID: &sucursalID,
		Rol:        "cajero",
	}
}

func supervisorActor() service.Actor {
	return service.Actor{
		UsuarioID: uuid.New(),
		EmpresaID: uuid.New(),
		Rol:       "supervisor",
	}
}

type cajaFixture struct {
	repo       *fakeCajaRepo
	ventas     *fakeVentaRepo
	usuarios   *fakeUsuarioRepo
	sucursales *fakeSucursalRepo
	svc        service.CajaService
}

func newCajaFixture(umbral string) *cajaFixture {
	f := &cajaFixture{
		repo:       newFakeCajaRepo(),
		ventas:     newFakeVentaRepo(),
		usuarios:   newFakeUsuarioRepo(),
		sucursales: newFakeSucursalRepo(),
	}
	f.svc = service.NewCajaService(f.repo, f.ventas, f.usuarios, f.sucursales, nil, d(umbral))
	return f
}

func TestAbrirCaja(t *testing.T) {
	f := newCajaFixture("1000")
	sucursalID := uuid.New()
	actor := cajeroActor(sucursalID)

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("5000.00"))
	require.NoError(t, err)
	assert.Equal(t, "abierta", caja.Estado)
	assert.Equal(t, actor.UsuarioID, caja.UsuarioID)
	assert.Equal(t, sucursalID, caja.SucursalID)
	assertDec(t, "5000.00", caja.MontoInicial)
	assert.Nil(t, caja.ClosedAt)
}

func TestAbrirCaja_YaAbierta(t *testing.T) {
	f := newCajaFixture("1000")
	actor := cajeroActor(uuid.New())

	_, err := f.svc.Abrir(context.Background(), actor, nil, d("100"))
	require.NoError(t, err)

	_, err = f.svc.Abrir(context.Background(), actor, nil, d("200"))
	assert.ErrorIs(t, err, service.ErrCajaYaAbierta)
}

func TestAbrirCaja_MontoNegativo(t *testing.T) {
	f := newCajaFixture("1000")
	_, err := f.svc.Abrir(context.Background(), cajeroActor(uuid.New()), nil, d("-1"))
	assert.ErrorIs(t, err, service.ErrMontoInvalido)
}

func TestAbrirCaja_ManagementSinSucursal(t *testing.T) {
	f := newCajaFixture("1000")
	_, err := f.svc.Abrir(context.Background(), supervisorActor(), nil, d("100"))
	assert.ErrorIs(t, err, service.ErrSucursalRequerida)
}

func TestCajaActiva(t *testing.T) {
	f := newCajaFixture("1000")
	actor := cajeroActor(uuid.New())

	_, err := f.svc.CajaActiva(context.Background(), actor, nil)
	assert.ErrorIs(t, err, service.ErrSinCajaAbierta)

	abierta, err := f.svc.Abrir(context.Background(), actor, nil, d("100"))
	require.NoError(t, err)

	activa, err := f.svc.CajaActiva(context.Background(), actor, nil)
	require.NoError(t, err)
	assert.Equal(t, abierta.ID, activa.ID)
}

func TestRegistrarMovimiento(t *testing.T) {
	f := newCajaFixture("1000")
	actor := cajeroActor(uuid.New())

	err := f.svc.RegistrarMovimiento(context.Background(), actor, nil, "ingreso", d("50"), "cambio")
	assert.ErrorIs(t, err, service.ErrSinCajaAbierta)

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("100"))
	require.NoError(t, err)

	err = f.svc.RegistrarMovimiento(context.Background(), actor, nil, "egreso", d("0"), "nada")
	assert.ErrorIs(t, err, service.ErrMontoInvalido)

	require.NoError(t, f.svc.RegistrarMovimiento(context.Background(), actor, nil, "ingreso", d("50"), "cambio"))
	require.NoError(t, f.svc.RegistrarMovimiento(context.Background(), actor, nil, "egreso", d("30"), "proveedor"))

	movs, err := f.svc.ListarMovimientos(context.Background(), caja.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "ingreso", movs[0].Tipo)
	assert.Equal(t, "egreso", movs[1].Tipo)
}

func TestCerrarCaja_ConDesvioYAlerta(t *testing.T) {
	f := newCajaFixture("100")
	actor := cajeroActor(uuid.New())

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("1000.00"))
	require.NoError(t, err)

	// One cash sale and one egreso: expected = 1000 + 500 - 200 = 1300.
	require.NoError(t, f.ventas.CreateTx(nil, &model.Venta{
		CajaID: caja.ID, SucursalID: caja.SucursalID, UsuarioID: actor.UsuarioID,
		MetodoPago: "efectivo", Total: d("500.00"), Estado: "completada",
	}))
	require.NoError(t, f.svc.RegistrarMovimiento(context.Background(), actor, nil, "egreso", d("200.00"), "proveedor"))

	cerrada, resultado, alerta, err := f.svc.Cerrar(context.Background(), actor, caja.ID, d("1100.00"))
	require.NoError(t, err)

	assert.Equal(t, "cerrada", cerrada.Estado)
	require.NotNil(t, cerrada.ClosedAt)
	require.NotNil(t, cerrada.MontoFinal)
	assertDec(t, "1100.00", *cerrada.MontoFinal)
	assertDec(t, "1300.00", resultado.EfectivoEsperado)
	require.NotNil(t, resultado.Desvio)
	assertDec(t, "-200.00", *resultado.Desvio)
	require.NotNil(t, cerrada.Desvio)
	assertDec(t, "-200.00", *cerrada.Desvio)
	assertDec(t, "500.00", cerrada.TotalVentas)
	// |desvio| = 200 > umbral 100. Dispatch is best-effort so the close
	// succeeds even with no dispatcher wired.
	assert.True(t, alerta)
}

func TestCerrarCaja_SinAlertaEnElUmbral(t *testing.T) {
	f := newCajaFixture("100")
	actor := cajeroActor(uuid.New())

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("1000.00"))
	require.NoError(t, err)

	// Counted exactly 100 over: at the threshold, not past it.
	_, resultado, alerta, err := f.svc.Cerrar(context.Background(), actor, caja.ID, d("1100.00"))
	require.NoError(t, err)
	assertDec(t, "100.00", *resultado.Desvio)
	assert.False(t, alerta)
}

func TestCerrarCaja_TransicionTerminal(t *testing.T) {
	f := newCajaFixture("1000")
	actor := cajeroActor(uuid.New())

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("100"))
	require.NoError(t, err)

	_, _, _, err = f.svc.Cerrar(context.Background(), actor, caja.ID, d("100"))
	require.NoError(t, err)

	_, _, _, err = f.svc.Cerrar(context.Background(), actor, caja.ID, d("100"))
	assert.ErrorIs(t, err, service.ErrCajaYaCerrada)
}

// cierreDuranteArqueoVentaRepo flips the stored session to cerrada while the
// close is still gathering its sales, simulating a concurrent close that won
// the race after the estado pre-check passed.
type cierreDuranteArqueoVentaRepo struct {
	*fakeVentaRepo
	cajas *fakeCajaRepo
}

func (r *cierreDuranteArqueoVentaRepo) ListByCaja(ctx context.Context, cajaID uuid.UUID) ([]model.Venta, error) {
	if c, ok := r.cajas.sesiones[cajaID]; ok {
		c.Estado = "cerrada"
	}
	return r.fakeVentaRepo.ListByCaja(ctx, cajaID)
}

func TestCerrarCaja_CierreConcurrentePierde(t *testing.T) {
	f := newCajaFixture("1000")
	ventas := &cierreDuranteArqueoVentaRepo{fakeVentaRepo: f.ventas, cajas: f.repo}
	svc := service.NewCajaService(f.repo, ventas, f.usuarios, f.sucursales, nil, d("1000"))
	actor := cajeroActor(uuid.New())

	caja, err := svc.Abrir(context.Background(), actor, nil, d("100"))
	require.NoError(t, err)

	_, _, _, err = svc.Cerrar(context.Background(), actor, caja.ID, d("100"))
	assert.ErrorIs(t, err, service.ErrCajaYaCerrada)

	// The losing close must not overwrite the winner's count.
	stored := f.repo.sesiones[caja.ID]
	assert.Nil(t, stored.MontoFinal)
	assert.Nil(t, stored.ClosedAt)
}

func TestCerrarCaja_SoloDuenoOManagement(t *testing.T) {
	f := newCajaFixture("1000")
	sucursalID := uuid.New()
	dueno := cajeroActor(sucursalID)

	caja, err := f.svc.Abrir(context.Background(), dueno, nil, d("100"))
	require.NoError(t, err)

	otro := cajeroActor(sucursalID)
	_, _, _, err = f.svc.Cerrar(context.Background(), otro, caja.ID, d("100"))
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)

	// A supervisor can close anyone's caja.
	_, _, _, err = f.svc.Cerrar(context.Background(), supervisorActor(), caja.ID, d("100"))
	assert.NoError(t, err)
}

func TestCerrarCaja_NoEncontrada(t *testing.T) {
	f := newCajaFixture("1000")
	_, _, _, err := f.svc.Cerrar(context.Background(), supervisorActor(), uuid.New(), d("100"))
	assert.ErrorIs(t, err, service.ErrCajaNoEncontrada)
}

func TestArqueo_SesionCerradaReaplicaContado(t *testing.T) {
	f := newCajaFixture("1000")
	actor := cajeroActor(uuid.New())

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("1000.00"))
	require.NoError(t, err)
	_, _, _, err = f.svc.Cerrar(context.Background(), actor, caja.ID, d("950.00"))
	require.NoError(t, err)

	// Historical recomputation: the stored count is re-applied so the
	// desvio is always present for closed sessions.
	_, resultado, err := f.svc.Arqueo(context.Background(), caja.ID)
	require.NoError(t, err)
	require.NotNil(t, resultado.MontoContado)
	assertDec(t, "950.00", *resultado.MontoContado)
	require.NotNil(t, resultado.Desvio)
	assertDec(t, "-50.00", *resultado.Desvio)
}

func TestArqueo_SesionAbiertaSinContado(t *testing.T) {
	f := newCajaFixture("1000")
	actor := cajeroActor(uuid.New())

	caja, err := f.svc.Abrir(context.Background(), actor, nil, d("1000.00"))
	require.NoError(t, err)

	_, resultado, err := f.svc.Arqueo(context.Background(), caja.ID)
	require.NoError(t, err)
	assertDec(t, "1000.00", resultado.EfectivoEsperado)
	assert.Nil(t, resultado.MontoContado)
	assert.Nil(t, resultado.Desvio)
}

func TestHistorial_Paginacion(t *testing.T) {
	f := newCajaFixture("1000")
	sucursalID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.repo.CreateSesion(context.Background(), &model.Caja{
			UsuarioID:  uuid.New(),
			SucursalID: sucursalID,
			Estado:     "cerrada",
			OpenedAt:   time.Now(),
		}))
	}

	page1, total, err := f.svc.Historial(context.Background(), sucursalID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page1, 2)

	// Out-of-range values fall back to sane defaults.
	todo, total, err := f.svc.Historial(context.Background(), sucursalID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, todo, 3)
}

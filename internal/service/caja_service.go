package service

import (
	"context"
	"time"

	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"
	"github.com/outisoft/ambar-pdv/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaService owns the register session lifecycle: open → operate → close.
// The open→close transition is terminal; reconciliation math lives in
// arqueo.go and is shared by the live preview and the authoritative close.
type CajaService interface {
	Abrir(ctx context.Context, actor Actor, sucursalElegida *uuid.UUID, montoInicial decimal.Decimal) (*model.Caja, error)
	CajaActiva(ctx context.Context, actor Actor, sucursalElegida *uuid.UUID) (*model.Caja, error)
	RegistrarMovimiento(ctx context.Context, actor Actor, sucursalElegida *uuid.UUID, tipo string, monto decimal.Decimal, descripcion string) error
	// Arqueo recomputes the reconciliation for any session, open or closed.
	// For closed sessions the stored count is re-applied, so historical
	// records that predate a stored desvio still render one.
	Arqueo(ctx context.Context, cajaID uuid.UUID) (*model.Caja, ResultadoArqueo, error)
	Cerrar(ctx context.Context, actor Actor, cajaID uuid.UUID, montoContado decimal.Decimal) (*model.Caja, ResultadoArqueo, bool, error)
	Historial(ctx context.Context, sucursalID uuid.UUID, page, limit int) ([]model.Caja, int64, error)
	ListarMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error)
}

type cajaService struct {
	repo       repository.CajaRepository
	ventas     repository.VentaRepository
	usuarios   repository.UsuarioRepository
	sucursales repository.SucursalRepository
	dispatcher *worker.Dispatcher
	umbral     decimal.Decimal
}

func NewCajaService(
	repo repository.CajaRepository,
	ventas repository.VentaRepository,
	usuarios repository.UsuarioRepository,
	sucursales repository.SucursalRepository,
	dispatcher *worker.Dispatcher,
	umbral decimal.Decimal,
) CajaService {
	return &cajaService{
		repo:       repo,
		ventas:     ventas,
		usuarios:   usuarios,
		sucursales: sucursales,
		dispatcher: dispatcher,
		umbral:     umbral,
	}
}

func (s *cajaService) Abrir(ctx context.Context, actor Actor, sucursalElegida *uuid.UUID, montoInicial decimal.Decimal) (*model.Caja, error) {
	if montoInicial.IsNegative() {
		return nil, ErrMontoInvalido
	}
	sucursalID, err := actor.ResolverSucursal(sucursalElegida)
	if err != nil {
		return nil, err
	}

	// Guard: one abierta per (usuario, sucursal). The partial unique index
	// created in infra backs this check against double-open races — a
	// concurrent insert fails there and surfaces as a constraint error.
	if existing, err := s.repo.FindAbierta(ctx, actor.UsuarioID, sucursalID); err == nil && existing != nil {
		return nil, ErrCajaYaAbierta
	}

	caja := &model.Caja{
		UsuarioID:    actor.UsuarioID,
		SucursalID:   sucursalID,
		MontoInicial: montoInicial,
		TotalVentas:  decimal.Zero,
		Estado:       "abierta",
		OpenedAt:     time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, caja); err != nil {
		return nil, err
	}
	return caja, nil
}

func (s *cajaService) CajaActiva(ctx context.Context, actor Actor, sucursalElegida *uuid.UUID) (*model.Caja, error) {
	sucursalID, err := actor.ResolverSucursal(sucursalElegida)
	if err != nil {
		return nil, err
	}
	caja, err := s.repo.FindAbierta(ctx, actor.UsuarioID, sucursalID)
	if err != nil {
		return nil, ErrSinCajaAbierta
	}
	return caja, nil
}

// RegistrarMovimiento writes a manual ingreso/egreso against the actor's
// open caja. Movements are immutable — there is no update or delete path.
func (s *cajaService) RegistrarMovimiento(ctx context.Context, actor Actor, sucursalElegida *uuid.UUID, tipo string, monto decimal.Decimal, descripcion string) error {
	if monto.LessThanOrEqual(decimal.Zero) {
		return ErrMontoInvalido
	}
	caja, err := s.CajaActiva(ctx, actor, sucursalElegida)
	if err != nil {
		return err
	}
	return s.repo.CreateMovimiento(ctx, &model.MovimientoCaja{
		CajaID:      caja.ID,
		Tipo:        tipo,
		Monto:       monto,
		Descripcion: descripcion,
	})
}

func (s *cajaService) Arqueo(ctx context.Context, cajaID uuid.UUID) (*model.Caja, ResultadoArqueo, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, ResultadoArqueo{}, ErrCajaNoEncontrada
	}
	ventas, err := s.ventas.ListByCaja(ctx, cajaID)
	if err != nil {
		return nil, ResultadoArqueo{}, err
	}

	resultado := CalcularArqueo(caja.MontoInicial, ventas, caja.Movimientos)
	if caja.MontoFinal != nil {
		resultado = resultado.ConContado(*caja.MontoFinal)
	}
	return caja, resultado, nil
}

// Cerrar performs the terminal abierta→cerrada transition. Returns the
// closed session, the reconciliation breakdown and whether a discrepancy
// alert was dispatched. Alert dispatch is fire-and-forget: its failure never
// fails the close.
func (s *cajaService) Cerrar(ctx context.Context, actor Actor, cajaID uuid.UUID, montoContado decimal.Decimal) (*model.Caja, ResultadoArqueo, bool, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, ResultadoArqueo{}, false, ErrCajaNoEncontrada
	}
	if caja.Estado != "abierta" {
		return nil, ResultadoArqueo{}, false, ErrCajaYaCerrada
	}
	if caja.UsuarioID != actor.UsuarioID && !actor.EsManagement() {
		return nil, ResultadoArqueo{}, false, ErrFueraDeAlcance
	}

	ventas, err := s.ventas.ListByCaja(ctx, cajaID)
	if err != nil {
		return nil, ResultadoArqueo{}, false, err
	}

	resultado := CalcularArqueo(caja.MontoInicial, ventas, caja.Movimientos).ConContado(montoContado)

	now := time.Now()
	caja.MontoFinal = &montoContado
	caja.Desvio = resultado.Desvio
	caja.TotalVentas = resultado.TotalVentas()
	caja.Estado = "cerrada"
	caja.ClosedAt = &now

	// The write is conditional on estado = 'abierta' so a concurrent close
	// between the read above and this transaction loses cleanly instead of
	// overwriting the first count.
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		filas, err := s.repo.CerrarSesionTx(tx, caja)
		if err != nil {
			return err
		}
		if filas == 0 {
			return ErrCajaYaCerrada
		}
		return nil
	})
	if txErr != nil {
		return nil, ResultadoArqueo{}, false, txErr
	}

	alerta := resultado.SuperaUmbral(s.umbral)
	if alerta {
		s.despacharAlerta(ctx, caja, resultado)
	}
	return caja, resultado, alerta, nil
}

// despacharAlerta enqueues a desvio alert for the empresa's management.
// Best-effort: errors are logged, never propagated.
func (s *cajaService) despacharAlerta(ctx context.Context, caja *model.Caja, resultado ResultadoArqueo) {
	if s.dispatcher == nil {
		return
	}

	payload := worker.AlertaDesvio{
		CajaID:           caja.ID.String(),
		SucursalID:       caja.SucursalID.String(),
		Desvio:           resultado.Desvio.String(),
		EfectivoEsperado: resultado.EfectivoEsperado.String(),
		MontoContado:     resultado.MontoContado.String(),
	}
	if sucursal, err := s.sucursales.FindByID(ctx, caja.SucursalID); err == nil {
		payload.EmpresaID = sucursal.EmpresaID.String()
		payload.Sucursal = sucursal.Nombre
	}
	if cajero, err := s.usuarios.FindByID(ctx, caja.UsuarioID); err == nil {
		payload.Cajero = cajero.Nombre
	}

	if err := s.dispatcher.EnqueueAlertaDesvio(ctx, payload); err != nil {
		log.Error().Err(err).Str("caja_id", caja.ID.String()).Msg("no se pudo encolar la alerta de desvío")
	}
}

func (s *cajaService) Historial(ctx context.Context, sucursalID uuid.UUID, page, limit int) ([]model.Caja, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListSesiones(ctx, sucursalID, page, limit)
}

func (s *cajaService) ListarMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	return s.repo.ListMovimientos(ctx, cajaID)
}

package service

import (
	"context"
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditoService maintains the client credit ledger. The ledger is the
// source of truth; Cliente.SaldoActual is a projection updated in the same
// transaction as every append. Entries are never updated or deleted.
type CreditoService interface {
	// CargarTx posts a charge inside a caller-owned transaction (the sale
	// engine's atomic unit). The client must belong to empresaID. Fails
	// with ErrLimiteCreditoExcedido when saldo + monto would exceed the
	// client's limit; the balance is left untouched on failure.
	CargarTx(tx *gorm.DB, empresaID, clienteID uuid.UUID, monto decimal.Decimal, ventaID *uuid.UUID, usuarioID uuid.UUID, descripcion string) (*model.TransaccionCliente, error)

	// CobrarAbono is the composite operation for a credit payment collected
	// in cash: it posts the ledger abono AND writes a tagged ingreso
	// movement against the actor's open caja, atomically.
	CobrarAbono(ctx context.Context, actor Actor, clienteID uuid.UUID, monto decimal.Decimal, sucursalElegida *uuid.UUID) (*model.TransaccionCliente, error)

	// RecalcularSaldo folds the ledger and rewrites the projection.
	// Returns the rebuilt balance. Used after suspected drift and by tests.
	RecalcularSaldo(ctx context.Context, actor Actor, clienteID uuid.UUID) (decimal.Decimal, error)

	EstadoCuenta(ctx context.Context, actor Actor, clienteID uuid.UUID) (*model.Cliente, []model.TransaccionCliente, error)
}

type creditoService struct {
	clientes repository.ClienteRepository
	cajas    repository.CajaRepository
}

func NewCreditoService(clientes repository.ClienteRepository, cajas repository.CajaRepository) CreditoService {
	return &creditoService{clientes: clientes, cajas: cajas}
}

func (s *creditoService) CargarTx(tx *gorm.DB, empresaID, clienteID uuid.UUID, monto decimal.Decimal, ventaID *uuid.UUID, usuarioID uuid.UUID, descripcion string) (*model.TransaccionCliente, error) {
	if monto.LessThanOrEqual(decimal.Zero) {
		return nil, ErrMontoInvalido
	}

	cliente, err := s.clientes.FindForUpdateTx(tx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente no encontrado: %w", ErrCreditoDenegado)
	}
	if cliente.EmpresaID != empresaID {
		return nil, ErrFueraDeAlcance
	}
	if !cliente.Activo {
		return nil, fmt.Errorf("cliente inactivo: %w", ErrCreditoDenegado)
	}

	saldoNuevo := cliente.SaldoActual.Add(monto)
	if saldoNuevo.GreaterThan(cliente.LimiteCredito) {
		return nil, ErrLimiteCreditoExcedido
	}

	t := &model.TransaccionCliente{
		ClienteID:     clienteID,
		UsuarioID:     usuarioID,
		VentaID:       ventaID,
		Tipo:          "cargo",
		Monto:         monto,
		SaldoAnterior: cliente.SaldoActual,
		SaldoNuevo:    saldoNuevo,
		Descripcion:   descripcion,
	}
	if err := s.clientes.CreateTransaccionTx(tx, t); err != nil {
		return nil, err
	}
	if err := s.clientes.UpdateSaldoTx(tx, clienteID, saldoNuevo); err != nil {
		return nil, err
	}
	return t, nil
}

// abonarTx posts a payment. Over-payment is rejected server-side: the old UI
// capped the amount at the debt with an input attribute, which is not a
// security boundary, so the ledger enforces it here.
func (s *creditoService) abonarTx(tx *gorm.DB, clienteID uuid.UUID, monto decimal.Decimal, usuarioID uuid.UUID, descripcion string) (*model.TransaccionCliente, error) {
	if monto.LessThanOrEqual(decimal.Zero) {
		return nil, ErrMontoInvalido
	}

	cliente, err := s.clientes.FindForUpdateTx(tx, clienteID)
	if err != nil {
		return nil, err
	}
	if monto.GreaterThan(cliente.SaldoActual) {
		return nil, ErrMontoExcedeSaldo
	}

	saldoNuevo := cliente.SaldoActual.Sub(monto)
	t := &model.TransaccionCliente{
		ClienteID:     clienteID,
		UsuarioID:     usuarioID,
		Tipo:          "abono",
		Monto:         monto,
		SaldoAnterior: cliente.SaldoActual,
		SaldoNuevo:    saldoNuevo,
		Descripcion:   descripcion,
	}
	if err := s.clientes.CreateTransaccionTx(tx, t); err != nil {
		return nil, err
	}
	if err := s.clientes.UpdateSaldoTx(tx, clienteID, saldoNuevo); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *creditoService) CobrarAbono(ctx context.Context, actor Actor, clienteID uuid.UUID, monto decimal.Decimal, sucursalElegida *uuid.UUID) (*model.TransaccionCliente, error) {
	sucursalID, err := actor.ResolverSucursal(sucursalElegida)
	if err != nil {
		return nil, err
	}

	// Money physically received requires an open register to receive it.
	caja, err := s.cajas.FindAbierta(ctx, actor.UsuarioID, sucursalID)
	if err != nil {
		return nil, ErrSinCajaAbierta
	}

	var transaccion *model.TransaccionCliente
	txErr := runTx(ctx, s.clientes.DB(), func(tx *gorm.DB) error {
		// Re-check the session under lock: a concurrent close between the
		// lookup above and this transaction must not gain a movement.
		sesion, err := s.cajas.FindForUpdateTx(tx, caja.ID)
		if err != nil || sesion.Estado != "abierta" {
			return ErrSinCajaAbierta
		}

		cliente, err := s.clientes.FindForUpdateTx(tx, clienteID)
		if err != nil {
			return err
		}
		if cliente.EmpresaID != actor.EmpresaID {
			return ErrFueraDeAlcance
		}
		descripcion := fmt.Sprintf("%s %s", model.AbonoClientePrefix, cliente.Nombre)

		transaccion, err = s.abonarTx(tx, clienteID, monto, actor.UsuarioID, descripcion)
		if err != nil {
			return err
		}

		// Companion cash movement — same atomic unit as the ledger append.
		return s.cajas.CreateMovimientoTx(tx, &model.MovimientoCaja{
			CajaID:      caja.ID,
			Tipo:        "ingreso",
			Monto:       monto,
			Descripcion: descripcion,
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return transaccion, nil
}

func (s *creditoService) RecalcularSaldo(ctx context.Context, actor Actor, clienteID uuid.UUID) (decimal.Decimal, error) {
	cliente, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return decimal.Zero, err
	}
	if cliente.EmpresaID != actor.EmpresaID {
		return decimal.Zero, ErrFueraDeAlcance
	}
	saldo, err := s.clientes.SumLedger(ctx, clienteID)
	if err != nil {
		return decimal.Zero, err
	}
	cliente.SaldoActual = saldo
	if err := s.clientes.Update(ctx, cliente); err != nil {
		return decimal.Zero, err
	}
	return saldo, nil
}

func (s *creditoService) EstadoCuenta(ctx context.Context, actor Actor, clienteID uuid.UUID) (*model.Cliente, []model.TransaccionCliente, error) {
	cliente, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return nil, nil, err
	}
	if cliente.EmpresaID != actor.EmpresaID {
		return nil, nil, ErrFueraDeAlcance
	}
	transacciones, err := s.clientes.ListTransacciones(ctx, clienteID)
	if err != nil {
		return nil, nil, err
	}
	return cliente, transacciones, nil
}

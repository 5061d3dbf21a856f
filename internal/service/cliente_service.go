package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/dto"
	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClienteService is thin CRUD over clients. Balance mutation is NOT here:
// saldo_actual moves exclusively through CreditoService ledger appends.
type ClienteService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, actor Actor, nombre string) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, actor Actor, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		EmpresaID:     actor.EmpresaID,
		Nombre:        req.Nombre,
		Telefono:      req.Telefono,
		Email:         req.Email,
		LimiteCredito: req.LimiteCredito,
		SaldoActual:   decimal.Zero,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cliente no encontrado: %w", err)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, actor Actor, nombre string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, actor.EmpresaID, nombre)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		items = append(items, *clienteToResponse(&clientes[i]))
	}
	return items, nil
}

func (s *clienteService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cliente no encontrado: %w", err)
	}
	if c.EmpresaID != actor.EmpresaID {
		return nil, ErrFueraDeAlcance
	}

	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.LimiteCredito != nil {
		if req.LimiteCredito.IsNegative() {
			return nil, ErrMontoInvalido
		}
		// Lowering the limit below the current debt is allowed: it only
		// blocks new charges, existing debt stays collectible.
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("cliente no encontrado: %w", err)
	}
	if c.SaldoActual.GreaterThan(decimal.Zero) {
		return errors.New("no se puede desactivar un cliente con saldo adeudado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:                c.ID.String(),
		Nombre:            c.Nombre,
		Telefono:          c.Telefono,
		Email:             c.Email,
		LimiteCredito:     c.LimiteCredito,
		SaldoActual:       c.SaldoActual,
		CreditoDisponible: c.LimiteCredito.Sub(c.SaldoActual),
		Activo:            c.Activo,
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/model"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService is the only mutation path for sucursal_productos rows.
// The *Tx methods run inside a caller-owned transaction (the sale engine's
// atomic unit); Ajustar is the administrative overwrite that bypasses the
// sale pipeline.
type StockService interface {
	// DescontarTx locks the row, verifies availability and decrements.
	// Fails with ErrStockInsuficiente before any mutation when cantidad
	// exceeds the current stock. Returns the before/after snapshot for the
	// movement audit row.
	DescontarTx(tx *gorm.DB, sucursalID, productoID uuid.UUID, cantidad int) (antes, despues int, err error)
	// ReponerTx adds sold quantities back on cancellation.
	ReponerTx(tx *gorm.DB, sucursalID, productoID uuid.UUID, cantidad int) (antes, despues int, err error)
	RegistrarMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error

	Ajustar(ctx context.Context, actor Actor, productoID, sucursalID uuid.UUID, stock, stockMinimo int) error
	Consultar(ctx context.Context, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error)
	ListarMovimientos(ctx context.Context, sucursalID, productoID uuid.UUID) ([]model.MovimientoStock, error)
	// BajoMinimo lists every branch/product row below its minimum for the
	// empresa. Same query the low-stock cron scans.
	BajoMinimo(ctx context.Context, empresaID uuid.UUID) ([]model.SucursalProducto, error)
}

type stockService struct {
	repo repository.StockRepository
}

func NewStockService(repo repository.StockRepository) StockService {
	return &stockService{repo: repo}
}

func (s *stockService) DescontarTx(tx *gorm.DB, sucursalID, productoID uuid.UUID, cantidad int) (int, int, error) {
	if cantidad <= 0 {
		return 0, 0, ErrMontoInvalido
	}
	sp, err := s.repo.FindForUpdateTx(tx, sucursalID, productoID)
	if err != nil {
		return 0, 0, fmt.Errorf("producto sin stock registrado en la sucursal: %w", ErrStockInsuficiente)
	}
	if sp.Stock < cantidad {
		return sp.Stock, sp.Stock, ErrStockInsuficiente
	}
	if err := s.repo.UpdateStockTx(tx, sp.ID, -cantidad); err != nil {
		return 0, 0, err
	}
	return sp.Stock, sp.Stock - cantidad, nil
}

func (s *stockService) ReponerTx(tx *gorm.DB, sucursalID, productoID uuid.UUID, cantidad int) (int, int, error) {
	if cantidad <= 0 {
		return 0, 0, ErrMontoInvalido
	}
	sp, err := s.repo.FindForUpdateTx(tx, sucursalID, productoID)
	if err != nil {
		return 0, 0, err
	}
	if err := s.repo.UpdateStockTx(tx, sp.ID, cantidad); err != nil {
		return 0, 0, err
	}
	return sp.Stock, sp.Stock + cantidad, nil
}

func (s *stockService) RegistrarMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return s.repo.CreateMovimientoTx(tx, m)
}

// Ajustar sets absolute stock / stock_minimo values and records an audit
// movement with the delta. Runs in its own transaction.
func (s *stockService) Ajustar(ctx context.Context, actor Actor, productoID, sucursalID uuid.UUID, stock, stockMinimo int) error {
	if stock < 0 || stockMinimo < 0 {
		return ErrMontoInvalido
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		antes := 0
		if sp, err := s.repo.FindForUpdateTx(tx, sucursalID, productoID); err == nil {
			antes = sp.Stock
		}
		if err := s.repo.UpsertTx(tx, &model.SucursalProducto{
			SucursalID:  sucursalID,
			ProductoID:  productoID,
			Stock:       stock,
			StockMinimo: stockMinimo,
		}); err != nil {
			return err
		}
		return s.repo.CreateMovimientoTx(tx, &model.MovimientoStock{
			SucursalID:    sucursalID,
			ProductoID:    productoID,
			Tipo:          "ajuste_manual",
			Cantidad:      stock - antes,
			StockAnterior: antes,
			StockNuevo:    stock,
			Motivo:        fmt.Sprintf("Ajuste manual por usuario %s", actor.UsuarioID),
		})
	})
}

func (s *stockService) Consultar(ctx context.Context, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error) {
	return s.repo.Find(ctx, sucursalID, productoID)
}

func (s *stockService) ListarMovimientos(ctx context.Context, sucursalID, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	return s.repo.ListMovimientos(ctx, sucursalID, productoID)
}

func (s *stockService) BajoMinimo(ctx context.Context, empresaID uuid.UUID) ([]model.SucursalProducto, error) {
	return s.repo.ListBajoMinimo(ctx, empresaID)
}

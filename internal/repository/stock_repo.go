package repository

import (
	"context"

	"github.com/outisoft/ambar-pdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository owns the sucursal_productos rows and the stock movement
// audit trail. The *Tx methods take a live transaction handle — callers are
// responsible for the atomic unit; the repository never opens its own.
type StockRepository interface {
	// FindForUpdateTx loads the branch/product row under SELECT … FOR UPDATE
	// so concurrent sales cannot both pass the stock check on a stale read.
	FindForUpdateTx(tx *gorm.DB, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	UpsertTx(tx *gorm.DB, sp *model.SucursalProducto) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error

	Find(ctx context.Context, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error)
	ListPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.SucursalProducto, error)
	Upsert(ctx context.Context, sp *model.SucursalProducto) error
	ListBajoMinimo(ctx context.Context, empresaID uuid.UUID) ([]model.SucursalProducto, error)
	ListMovimientos(ctx context.Context, sucursalID, productoID uuid.UUID) ([]model.MovimientoStock, error)

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) FindForUpdateTx(tx *gorm.DB, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error) {
	var sp model.SucursalProducto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sucursal_id = ? AND producto_id = ?", sucursalID, productoID).
		First(&sp).Error
	return &sp, err
}

func (r *stockRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.SucursalProducto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *stockRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *stockRepo) Find(ctx context.Context, sucursalID, productoID uuid.UUID) (*model.SucursalProducto, error) {
	var sp model.SucursalProducto
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND producto_id = ?", sucursalID, productoID).
		First(&sp).Error
	return &sp, err
}

func (r *stockRepo) ListPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.SucursalProducto, error) {
	var rows []model.SucursalProducto
	err := r.db.WithContext(ctx).Preload("Sucursal").
		Where("producto_id = ?", productoID).Find(&rows).Error
	return rows, err
}

func (r *stockRepo) Upsert(ctx context.Context, sp *model.SucursalProducto) error {
	return r.upsert(r.db.WithContext(ctx), sp)
}

func (r *stockRepo) UpsertTx(tx *gorm.DB, sp *model.SucursalProducto) error {
	return r.upsert(tx, sp)
}

func (r *stockRepo) upsert(db *gorm.DB, sp *model.SucursalProducto) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sucursal_id"}, {Name: "producto_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock", "stock_minimo", "updated_at"}),
	}).Create(sp).Error
}

func (r *stockRepo) ListBajoMinimo(ctx context.Context, empresaID uuid.UUID) ([]model.SucursalProducto, error) {
	var rows []model.SucursalProducto
	err := r.db.WithContext(ctx).Preload("Producto").Preload("Sucursal").
		Joins("JOIN sucursals ON sucursals.id = sucursal_productos.sucursal_id").
		Where("sucursals.empresa_id = ? AND sucursal_productos.stock < sucursal_productos.stock_minimo", empresaID).
		Find(&rows).Error
	return rows, err
}

func (r *stockRepo) ListMovimientos(ctx context.Context, sucursalID, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	var movs []model.MovimientoStock
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND producto_id = ?", sucursalID, productoID).
		Order("created_at DESC").Find(&movs).Error
	return movs, err
}

func (r *stockRepo) DB() *gorm.DB { return r.db }

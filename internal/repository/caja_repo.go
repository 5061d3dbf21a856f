package repository

import (
	"context"

	"github.com/outisoft/ambar-pdv/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateSesion(ctx context.Context, c *model.Caja) error
	// FindAbierta returns the open session for a (usuario, sucursal) pair,
	// or gorm.ErrRecordNotFound.
	FindAbierta(ctx context.Context, usuarioID, sucursalID uuid.UUID) (*model.Caja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	// FindForUpdateTx locks the session row for the rest of the transaction.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error)
	// CerrarSesionTx persists the close only if the row is still abierta.
	// Returns the number of rows affected; zero means a concurrent close won.
	CerrarSesionTx(tx *gorm.DB, c *model.Caja) (int64, error)
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error)
	ListSesiones(ctx context.Context, sucursalID uuid.UUID, page, limit int) ([]model.Caja, int64, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateSesion(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindAbierta(ctx context.Context, usuarioID, sucursalID uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND sucursal_id = ? AND estado = 'abierta'", usuarioID, sucursalID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).Preload("Movimientos").First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) CerrarSesionTx(tx *gorm.DB, c *model.Caja) (int64, error) {
	res := tx.Model(&model.Caja{}).
		Where("id = ? AND estado = 'abierta'", c.ID).
		Updates(map[string]interface{}{
			"monto_final":  c.MontoFinal,
			"desvio":       c.Desvio,
			"total_ventas": c.TotalVentas,
			"estado":       c.Estado,
			"closed_at":    c.ClosedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Where("caja_id = ?", cajaID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) ListSesiones(ctx context.Context, sucursalID uuid.UUID, page, limit int) ([]model.Caja, int64, error) {
	var cajas []model.Caja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Caja{}).Where("sucursal_id = ?", sucursalID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("opened_at DESC").Offset(offset).Limit(limit).Find(&cajas).Error
	return cajas, total, err
}

func (r *cajaRepo) DB() *gorm.DB { return r.db }

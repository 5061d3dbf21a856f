package repository

import (
	"context"

	"github.com/outisoft/ambar-pdv/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClienteRepository owns clients and their append-only credit ledger.
// Ledger rows are insert-only: there is deliberately no Update/Delete for
// transacciones_cliente.
type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, empresaID uuid.UUID, nombre string) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindForUpdateTx locks the client row for the duration of a ledger
	// append so concurrent charges cannot both pass the limit check.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)
	UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error
	CreateTransaccionTx(tx *gorm.DB, t *model.TransaccionCliente) error

	ListTransacciones(ctx context.Context, clienteID uuid.UUID) ([]model.TransaccionCliente, error)
	// SumLedger folds the ledger: Σ cargos − Σ abonos. Used to rebuild the
	// denormalized saldo_actual projection.
	SumLedger(ctx context.Context, clienteID uuid.UUID) (decimal.Decimal, error)

	DB() *gorm.DB
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, empresaID uuid.UUID, nombre string) ([]model.Cliente, error) {
	var clientes []model.Cliente
	q := r.db.WithContext(ctx).Where("empresa_id = ? AND activo = true", empresaID)
	if nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+nombre+"%")
	}
	err := q.Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *clienteRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error {
	return tx.Model(&model.Cliente{}).Where("id = ?", id).Update("saldo_actual", saldo).Error
}

func (r *clienteRepo) CreateTransaccionTx(tx *gorm.DB, t *model.TransaccionCliente) error {
	return tx.Create(t).Error
}

func (r *clienteRepo) ListTransacciones(ctx context.Context, clienteID uuid.UUID) ([]model.TransaccionCliente, error) {
	var txs []model.TransaccionCliente
	err := r.db.WithContext(ctx).
		Where("cliente_id = ?", clienteID).
		Order("created_at ASC").Find(&txs).Error
	return txs, err
}

func (r *clienteRepo) SumLedger(ctx context.Context, clienteID uuid.UUID) (decimal.Decimal, error) {
	var result struct{ Saldo decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&model.TransaccionCliente{}).
		Select("COALESCE(SUM(CASE WHEN tipo = 'cargo' THEN monto ELSE -monto END), 0) AS saldo").
		Where("cliente_id = ?", clienteID).
		Scan(&result).Error
	return result.Saldo, err
}

func (r *clienteRepo) DB() *gorm.DB { return r.db }

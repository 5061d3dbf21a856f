package infra

import (
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique index, sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Empresa{},
		&model.Sucursal{},
		&model.Usuario{},
		&model.Producto{},
		&model.SucursalProducto{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.TransaccionCliente{},
		&model.Caja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches adds DDL that AutoMigrate cannot express. Each statement
// is idempotent so restarts on an already-patched schema are no-ops.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At-most-one open register per (usuario, sucursal): a partial
		// unique index serializes the open check against concurrent opens.
		{"partial unique index on open cajas", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_caja_abierta_usuario_sucursal
ON cajas (usuario_id, sucursal_id)
WHERE estado = 'abierta'`},

		// Atomic ticket numbering for ventas.
		{"ticket number sequence", `
CREATE SEQUENCE IF NOT EXISTS ventas_numero_ticket_seq`},

		// Safety net behind the application-level check: stock can never be
		// persisted negative even if a code path bypasses the row lock.
		{"non-negative stock check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_no_negativo') THEN
    ALTER TABLE sucursal_productos ADD CONSTRAINT chk_stock_no_negativo CHECK (stock >= 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}

package worker

// stock_cron.go
// Background goroutine that periodically scans every empresa for products
// below their minimum branch stock and enqueues low-stock alerts. A Redis
// key per (sucursal, producto, day) deduplicates so management gets at most
// one alert per product per day.

import (
	"context"
	"fmt"
	"time"

	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	stockTickInterval = 15 * time.Minute
	stockDedupeTTL    = 24 * time.Hour
)

// StockCronConfig holds all dependencies for the low-stock scan goroutine.
type StockCronConfig struct {
	Sucursales repository.SucursalRepository
	Stock      repository.StockRepository
	Dispatcher *Dispatcher
	RDB        *redis.Client
	Interval   time.Duration
}

// StartStockCron launches a background goroutine that ticks on the configured
// interval (default 15m) and enqueues alerts for low-stock products.
// It respects the context for graceful shutdown.
func StartStockCron(ctx context.Context, cfg StockCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = stockTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("stock_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_cron: shutting down")
				return
			case <-ticker.C:
				scanStockBajo(ctx, cfg)
			}
		}
	}()
}

func scanStockBajo(ctx context.Context, cfg StockCronConfig) {
	empresas, err := cfg.Sucursales.ListEmpresas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock_cron: failed to list empresas")
		return
	}

	for i := range empresas {
		empresa := &empresas[i]
		rows, err := cfg.Stock.ListBajoMinimo(ctx, empresa.ID)
		if err != nil {
			log.Error().Err(err).Str("empresa_id", empresa.ID.String()).Msg("stock_cron: low-stock query failed")
			continue
		}

		for j := range rows {
			row := &rows[j]

			// Once per product per day
			dedupeKey := fmt.Sprintf("alerta_stock:%s:%s:%s",
				row.SucursalID, row.ProductoID, time.Now().UTC().Format("2006-01-02"))
			ok, err := cfg.RDB.SetNX(ctx, dedupeKey, 1, stockDedupeTTL).Result()
			if err != nil {
				log.Error().Err(err).Msg("stock_cron: dedupe check failed")
				continue
			}
			if !ok {
				continue
			}

			payload := AlertaStockBajo{
				EmpresaID:   empresa.ID.String(),
				SucursalID:  row.SucursalID.String(),
				ProductoID:  row.ProductoID.String(),
				Stock:       row.Stock,
				StockMinimo: row.StockMinimo,
			}
			if row.Sucursal != nil {
				payload.Sucursal = row.Sucursal.Nombre
			}
			if row.Producto != nil {
				payload.Producto = row.Producto.Nombre
			}

			if err := cfg.Dispatcher.EnqueueAlertaStock(ctx, payload); err != nil {
				log.Error().Err(err).Str("producto_id", row.ProductoID.String()).Msg("stock_cron: failed to enqueue alert")
			}
		}
	}
}

package worker

// alerta_worker.go
// Processes alert jobs from QueueAlertas: cash-count discrepancies detected
// at register close, and products that fell below their minimum stock.
// Alerts fan out to the empresa's management (supervisores + administradores)
// by email and, if configured, to an external webhook.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/outisoft/ambar-pdv/internal/infra"
	"github.com/outisoft/ambar-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AlertaDesvio is the job payload enqueued when a register closes with a
// discrepancy above the configured threshold. Amounts travel as strings to
// keep the wire format exact.
type AlertaDesvio struct {
	CajaID           string `json:"caja_id"`
	SucursalID       string `json:"sucursal_id"`
	Desvio           string `json:"desvio"`
	EfectivoEsperado string `json:"efectivo_esperado"`
	MontoContado     string `json:"monto_contado"`
	EmpresaID        string `json:"empresa_id"`
	Sucursal         string `json:"sucursal"`
	Cajero           string `json:"cajero"`
}

// AlertaStockBajo is the job payload enqueued by the stock cron when a
// product's branch stock falls below its configured minimum.
type AlertaStockBajo struct {
	EmpresaID   string `json:"empresa_id"`
	SucursalID  string `json:"sucursal_id"`
	Sucursal    string `json:"sucursal"`
	ProductoID  string `json:"producto_id"`
	Producto    string `json:"producto"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
}

// AlertaWorker delivers alert jobs to management via SMTP and webhook.
type AlertaWorker struct {
	usuarios repository.UsuarioRepository
	mailer   *infra.Mailer
	notifier *infra.Notifier
	rdb      *redis.Client
}

func NewAlertaWorker(usuarios repository.UsuarioRepository, mailer *infra.Mailer, notifier *infra.Notifier, rdb *redis.Client) *AlertaWorker {
	return &AlertaWorker{usuarios: usuarios, mailer: mailer, notifier: notifier, rdb: rdb}
}

// ProcessDesvio delivers a cash-discrepancy alert. Email and webhook are each
// best-effort; the alert is parked for replay only when every channel fails.
func (w *AlertaWorker) ProcessDesvio(ctx context.Context, raw json.RawMessage) {
	var payload AlertaDesvio
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid desvio payload")
		return
	}

	subject := fmt.Sprintf("Desvío de caja en %s: %s", payload.Sucursal, payload.Desvio)
	body := fmt.Sprintf(
		"Se detectó un desvío al cerrar la caja %s.\n\n"+
			"Sucursal: %s\nCajero: %s\n"+
			"Efectivo esperado: %s\nEfectivo contado: %s\nDesvío: %s\n",
		payload.CajaID, payload.Sucursal, payload.Cajero,
		payload.EfectivoEsperado, payload.MontoContado, payload.Desvio,
	)

	delivered := w.deliver(ctx, payload.EmpresaID, subject, body, payload)
	if !delivered {
		ArchivarFallida(ctx, w.rdb, QueueAlertas, JobAlertaDesvio, raw, "ningún canal de entrega disponible")
		return
	}
	log.Info().Str("caja_id", payload.CajaID).Str("desvio", payload.Desvio).Msg("alerta_worker: desvio alert delivered")
}

// ProcessStockBajo delivers a low-stock alert.
func (w *AlertaWorker) ProcessStockBajo(ctx context.Context, raw json.RawMessage) {
	var payload AlertaStockBajo
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid stock payload")
		return
	}

	subject := fmt.Sprintf("Stock bajo: %s en %s", payload.Producto, payload.Sucursal)
	body := fmt.Sprintf(
		"El producto %s quedó por debajo de su stock mínimo en la sucursal %s.\n\n"+
			"Stock actual: %d\nStock mínimo: %d\n",
		payload.Producto, payload.Sucursal, payload.Stock, payload.StockMinimo,
	)

	delivered := w.deliver(ctx, payload.EmpresaID, subject, body, payload)
	if !delivered {
		ArchivarFallida(ctx, w.rdb, QueueAlertas, JobAlertaStockBajo, raw, "ningún canal de entrega disponible")
		return
	}
	log.Info().Str("producto", payload.Producto).Str("sucursal", payload.Sucursal).Msg("alerta_worker: stock alert delivered")
}

// deliver fans the alert out to every channel and reports whether at least
// one succeeded. A skipped channel (not configured) does not count as success.
func (w *AlertaWorker) deliver(ctx context.Context, empresaID, subject, body string, payload interface{}) bool {
	delivered := false

	if w.mailer != nil && w.mailer.Configured() {
		if recipients := w.managementEmails(ctx, empresaID); len(recipients) > 0 {
			if err := w.mailer.SendAlerta(recipients, subject, body); err != nil {
				log.Error().Err(err).Str("empresa_id", empresaID).Msg("alerta_worker: email delivery failed")
			} else {
				delivered = true
			}
		}
	}

	if w.notifier != nil && w.notifier.Configured() {
		if err := w.notifier.Notify(ctx, payload); err != nil {
			log.Error().Err(err).Msg("alerta_worker: webhook delivery failed")
		} else {
			delivered = true
		}
	}

	return delivered
}

func (w *AlertaWorker) managementEmails(ctx context.Context, empresaID string) []string {
	id, err := uuid.Parse(empresaID)
	if err != nil {
		log.Error().Str("empresa_id", empresaID).Msg("alerta_worker: invalid empresa_id in payload")
		return nil
	}
	usuarios, err := w.usuarios.FindManagement(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("empresa_id", empresaID).Msg("alerta_worker: failed to load management users")
		return nil
	}
	emails := make([]string, 0, len(usuarios))
	for i := range usuarios {
		if usuarios[i].Email != nil && *usuarios[i].Email != "" {
			emails = append(emails, *usuarios[i].Email)
		}
	}
	return emails
}

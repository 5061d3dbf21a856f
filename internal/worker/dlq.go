package worker

// Alerts that exhausted every delivery channel are parked in a Redis list
// next to their source queue ({cola}:fallidas) so an operator can inspect
// and replay them.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func colaFallidas(cola string) string { return cola + ":fallidas" }

// AlertaFallida records the undeliverable payload plus enough context to
// decide whether a replay makes sense.
type AlertaFallida struct {
	Cola      string          `json:"cola"`
	Tipo      string          `json:"tipo"`
	Payload   json.RawMessage `json:"payload"`
	Motivo    string          `json:"motivo"`
	FallidaEn time.Time       `json:"fallida_en"`
}

// ArchivarFallida parks an undeliverable alert. Best-effort: a Redis error
// here is logged and the alert is lost, which the delivery contract allows.
func ArchivarFallida(ctx context.Context, rdb *redis.Client, cola, tipo string, payload json.RawMessage, motivo string) {
	entrada := AlertaFallida{
		Cola:      cola,
		Tipo:      tipo,
		Payload:   payload,
		Motivo:    motivo,
		FallidaEn: time.Now().UTC(),
	}

	data, err := json.Marshal(entrada)
	if err != nil {
		log.Error().Err(err).Str("cola", cola).Msg("no se pudo serializar la alerta fallida")
		return
	}
	if err := rdb.LPush(ctx, colaFallidas(cola), data).Err(); err != nil {
		log.Error().Err(err).Str("cola", colaFallidas(cola)).Msg("no se pudo archivar la alerta fallida")
		return
	}

	log.Warn().
		Str("cola", cola).
		Str("tipo", tipo).
		Str("motivo", motivo).
		Msg("alerta archivada sin entregar")
}

// ContarFallidas reports how many alerts are parked for a queue.
func ContarFallidas(ctx context.Context, rdb *redis.Client, cola string) (int64, error) {
	return rdb.LLen(ctx, colaFallidas(cola)).Result()
}

package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportRequest defines the Kafka message that asks the worker to run a
// queued supplier import job.
type ImportRequest struct {
	JobID          uuid.UUID       `json:"job_id"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	OrganisationID string          `json:"organisation_id"`
	Filename       string          `json:"filename"`
	ObjectKey      string          `json:"object_key"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	RecordActivity bool            `json:"record_activity"`
	Actor          string          `json:"actor"`
	CorrelationID  string          `json:"correlation_id"`
	Timestamp      time.Time       `json:"timestamp"`
}

package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type identifies what a job does.
type Type string

const TypeSupplierImport Type = "supplier_import"

// Status is the lifecycle state of a system job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// maxStoredErrors bounds the error messages kept on a job row.
const maxStoredErrors = 100

// ImportPayload holds the parameters needed to run, or rerun, a supplier import.
type ImportPayload struct {
	Filename       string          `json:"filename"`
	ObjectKey      string          `json:"objectKey,omitempty"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	RecordActivity bool            `json:"recordActivity"`
	Actor          string          `json:"actor,omitempty"`
}

// Summary is the row count outcome of an import.
type Summary struct {
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Errors        int      `json:"errors"`
	Duplicates    int      `json:"duplicates"`
	ErrorMessages []string `json:"errorMessages"`
}

// Job tracks a long running operation.
type Job struct {
	ID             uuid.UUID  `json:"id"`
	OrganisationID string     `json:"organisationId"`
	Type           Type       `json:"type"`
	Status         Status     `json:"status"`
	SupplierID     *uuid.UUID `json:"supplierId,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
	Summary
	RetryCount int             `json:"retryCount"`
	LastError  string          `json:"lastError,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewImportJob creates a queued supplier import job.
func NewImportJob(organisationID string, supplierID uuid.UUID, payload ImportPayload) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Job{
		ID:             uuid.New(),
		OrganisationID: organisationID,
		Type:           TypeSupplierImport,
		Status:         StatusQueued,
		SupplierID:     &supplierID,
		Summary:        Summary{ErrorMessages: []string{}},
		Payload:        raw,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ImportPayload decodes the job's payload.
func (j *Job) ImportPayload() (ImportPayload, error) {
	var p ImportPayload
	err := json.Unmarshal(j.Payload, &p)
	return p, err
}

// Start moves a queued job to running.
func (j *Job) Start() {
	now := time.Now().UTC()
	j.Status = StatusRunning
	j.StartedAt = &now
	j.FinishedAt = nil
	j.UpdatedAt = now
}

// Complete records the summary and moves the job to its final state. A run
// with no successful row and at least one error counts as failed.
func (j *Job) Complete(s Summary) {
	now := time.Now().UTC()
	if len(s.ErrorMessages) > maxStoredErrors {
		s.ErrorMessages = s.ErrorMessages[:maxStoredErrors]
	}
	if s.ErrorMessages == nil {
		s.ErrorMessages = []string{}
	}
	j.Summary = s
	j.Status = StatusCompleted
	j.LastError = ""
	if s.Success == 0 && s.Errors > 0 {
		j.Status = StatusFailed
		j.LastError = "no rows imported"
	}
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// Fail marks the job failed with reason.
func (j *Job) Fail(reason string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.LastError = reason
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// CanRetry checks that the job may be retried under the given limit.
func (j *Job) CanRetry(maxRetries int) error {
	if j.Status != StatusFailed {
		return ErrNotRetryable{ID: j.ID, Status: j.Status}
	}
	if j.RetryCount >= maxRetries {
		return ErrMaxRetriesExceeded{ID: j.ID, Retries: j.RetryCount, Max: maxRetries}
	}
	return nil
}

// Requeue puts a failed job back in the queue and counts the retry.
func (j *Job) Requeue(maxRetries int) error {
	if err := j.CanRetry(maxRetries); err != nil {
		return err
	}
	j.RetryCount++
	j.Status = StatusQueued
	j.StartedAt = nil
	j.FinishedAt = nil
	j.Summary = Summary{ErrorMessages: []string{}}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// CanCancel reports whether the job is still active.
func (j *Job) CanCancel() error {
	if j.Status != StatusQueued && j.Status != StatusRunning {
		return ErrNotCancellable{ID: j.ID, Status: j.Status}
	}
	return nil
}

// Cancel stops a queued or running job.
func (j *Job) Cancel() error {
	if err := j.CanCancel(); err != nil {
		return err
	}
	now := time.Now().UTC()
	j.Status = StatusCancelled
	j.FinishedAt = &now
	j.UpdatedAt = now
	return nil
}

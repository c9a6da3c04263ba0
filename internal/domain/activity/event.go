package activity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
)

// Event types recorded by the services.
const (
	TypeProductCreated          = "product.created"
	TypeProductSold             = "product.sold"
	TypeBuyingListCreated       = "buying_list.created"
	TypeBuyingListReceived      = "buying_list.received"
	TypeSupplierImportCompleted = "supplier.import_completed"
	TypeSourcingStatusChanged   = "sourcing.status_changed"
	TypeJobRetried              = "job.retried"
	TypeJobCancelled            = "job.cancelled"
)

// Entity types an event can refer to.
const (
	EntityProduct        = "product"
	EntityBuyingListItem = "buying_list_item"
	EntitySupplier       = "supplier"
	EntitySourcing       = "sourcing_request"
	EntityJob            = "system_job"
)

// Event is an append-only activity record.
type Event struct {
	ID             uuid.UUID       `json:"id"`
	OrganisationID string          `json:"organisationId"`
	Actor          string          `json:"actor"`
	Type           string          `json:"type"`
	EntityType     string          `json:"entityType"`
	EntityID       string          `json:"entityId"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NewEvent builds an event with payload marshalled to JSON.
func NewEvent(organisationID, actor, eventType, entityType, entityID string, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if actor == "" {
		actor = "system"
	}
	return &Event{
		ID:             uuid.New(),
		OrganisationID: organisationID,
		Actor:          actor,
		Type:           eventType,
		EntityType:     entityType,
		EntityID:       entityID,
		Payload:        raw,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Validate checks the event's required fields.
func (e *Event) Validate() error {
	var errs shared.ValidationErrors
	errs.Required("type", e.Type)
	errs.Required("entityType", e.EntityType)
	errs.Required("entityId", e.EntityID)
	if len(e.Payload) > 0 && !json.Valid(e.Payload) {
		errs.Add("payload", "must be valid JSON")
	}
	return errs.Err()
}

// FeedEntry is the read-model projection of an Event served by the dashboard.
type FeedEntry struct {
	EventID        string         `json:"id" bson:"_id"`
	OrganisationID string         `json:"organisationId" bson:"organisation_id"`
	Actor          string         `json:"actor" bson:"actor"`
	Type           string         `json:"type" bson:"type"`
	EntityType     string         `json:"entityType" bson:"entity_type"`
	EntityID       string         `json:"entityId" bson:"entity_id"`
	Payload        map[string]any `json:"payload" bson:"payload"`
	CreatedAt      time.Time      `json:"createdAt" bson:"created_at"`
	ProjectedAt    time.Time      `json:"projectedAt" bson:"projected_at"`
}

// ToFeedEntry projects the event into its feed representation.
func (e *Event) ToFeedEntry() (*FeedEntry, error) {
	payload := map[string]any{}
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return nil, err
		}
	}
	return &FeedEntry{
		EventID:        e.ID.String(),
		OrganisationID: e.OrganisationID,
		Actor:          e.Actor,
		Type:           e.Type,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		Payload:        payload,
		CreatedAt:      e.CreatedAt,
		ProjectedAt:    time.Now().UTC(),
	}, nil
}

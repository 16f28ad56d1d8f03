// Package audit appends tenant activity records. Entries are never updated.
package audit

import (
	"context"

	auditDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/audit"
)

const (
	ActionOrganizationCreated = auditDatamodel.ActionOrganizationCreated
	ActionUserJoined          = auditDatamodel.ActionUserJoined
	ActionInvitationCreated   = auditDatamodel.ActionInvitationCreated
	ActionInvitationCanceled  = auditDatamodel.ActionInvitationCanceled
)

type Entry struct {
	OrganizationID string
	ActorID        string
	Action         string
	EntityType     string
	EntityID       string
	Details        map[string]interface{}
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

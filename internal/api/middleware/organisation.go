package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// OrganisationIDHeader selects the tenant a request acts on.
	OrganisationIDHeader = "X-Organisation-ID"
	// OrganisationIDKey is the gin context key of the resolved organisation.
	OrganisationIDKey = "organisation_id"
)

type organisationCtxKey struct{}

// Organisation resolves the tenant from X-Organisation-ID, falling back to
// defaultID when the header is absent.
func Organisation(defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := strings.TrimSpace(c.GetHeader(OrganisationIDHeader))
		if orgID == "" {
			orgID = defaultID
		}

		c.Set(OrganisationIDKey, orgID)
		c.Request = c.Request.WithContext(WithOrganisationID(c.Request.Context(), orgID))
		c.Next()
	}
}

// GetOrganisationID retrieves the organisation from the gin context.
func GetOrganisationID(c *gin.Context) string {
	return c.GetString(OrganisationIDKey)
}

func WithOrganisationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, organisationCtxKey{}, id)
}

// OrganisationIDFromContext returns the organisation stored on ctx, or "".
func OrganisationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(organisationCtxKey{}).(string)
	return id
}

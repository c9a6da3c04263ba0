package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// pathID parses the :id path parameter, answering 400 when it is not a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondBadRequest(c, "Invalid id: "+raw)
		return uuid.Nil, false
	}
	return id, true
}

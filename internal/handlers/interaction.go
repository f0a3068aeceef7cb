package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/hybridlms/backend/internal/requestdata"
	"github.com/hybridlms/backend/internal/services"
)

type InteractionHandler struct {
	interactionService services.InteractionService
}

func NewInteractionHandler(interactionService services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService}
}

func (ih *InteractionHandler) Record(c *gin.Context) {
	var req struct {
		CourseID         uuid.UUID      `json:"course_id"`
		Type             string         `json:"type"`
		Rating           *int           `json:"rating"`
		TimeSpentMinutes int            `json:"time_spent_minutes"`
		Metadata         datatypes.JSON `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	interaction, err := ih.interactionService.Record(c.Request.Context(), nil, services.RecordInteractionInput{
		UserID:           rd.UserID,
		CourseID:         req.CourseID,
		Type:             req.Type,
		Rating:           req.Rating,
		TimeSpentMinutes: req.TimeSpentMinutes,
		Metadata:         req.Metadata,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, interaction)
}

func (ih *InteractionHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		since = parsed
	}
	interactions, err := ih.interactionService.ListByUser(c.Request.Context(), rd.UserID, since, queryInt(c, "limit", 100))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"interactions": interactions})
}

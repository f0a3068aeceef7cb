package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/requestdata"
	"github.com/hybridlms/backend/internal/services"
	"github.com/hybridlms/backend/internal/types"
)

type RecommendationHandler struct {
	recommendationService services.RecommendationService
}

func NewRecommendationHandler(recommendationService services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

func (rh *RecommendationHandler) Generate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recs, err := rh.recommendationService.Generate(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"recommendations": recs, "count": len(recs)})
}

func (rh *RecommendationHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	filter := repos.RecommendationFilter{
		Type:             c.Query("type"),
		Algorithm:        c.Query("algorithm"),
		IncludeDismissed: c.Query("include_dismissed") == "true",
		Limit:            queryInt(c, "limit", 20),
		Offset:           queryInt(c, "offset", 0),
	}
	recs, total, err := rh.recommendationService.List(c.Request.Context(), rd.UserID, filter)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"recommendations": recs, "total": total})
}

func (rh *RecommendationHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recommendationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rec, err := rh.recommendationService.Get(c.Request.Context(), rd.UserID, recommendationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, rec)
}

func (rh *RecommendationHandler) Click(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recommendationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rec, err := rh.recommendationService.RecordClick(c.Request.Context(), rd.UserID, recommendationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, rec)
}

func (rh *RecommendationHandler) Dismiss(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recommendationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rec, err := rh.recommendationService.RecordDismiss(c.Request.Context(), rd.UserID, recommendationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, rec)
}

func (rh *RecommendationHandler) Feedback(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recommendationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req struct {
		FeedbackType string `json:"feedback_type"`
		Comment      string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	feedback, err := rh.recommendationService.RecordFeedback(c.Request.Context(), rd.UserID, recommendationID, req.FeedbackType, req.Comment)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, feedback)
}

func (rh *RecommendationHandler) ListFeedback(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	feedback, err := rh.recommendationService.ListFeedback(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": feedback})
}

func (rh *RecommendationHandler) GetProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	profile, err := rh.recommendationService.GetProfile(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, profile)
}

func (rh *RecommendationHandler) GetSettings(c *gin.Context) {
	settings, err := rh.recommendationService.GetSettings(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, settings)
}

func (rh *RecommendationHandler) UpdateSettings(c *gin.Context) {
	var req types.RecommendationSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	settings, err := rh.recommendationService.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, settings)
}

func (rh *RecommendationHandler) RegenerateAll(c *gin.Context) {
	force := c.Query("force") == "true"
	summary, err := rh.recommendationService.RegenerateAll(c.Request.Context(), force)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, summary)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hybridlms/backend/internal/requestdata"
	"github.com/hybridlms/backend/internal/services"
)

type GamificationHandler struct {
	gamificationService services.GamificationService
}

func NewGamificationHandler(gamificationService services.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamificationService: gamificationService}
}

func (gh *GamificationHandler) GetStats(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	stats, err := gh.gamificationService.GetStats(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	rank, err := gh.gamificationService.GetRank(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"stats": stats, "rank": rank})
}

func (gh *GamificationHandler) Leaderboard(c *gin.Context) {
	entries, err := gh.gamificationService.Leaderboard(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"leaderboard": entries})
}

func (gh *GamificationHandler) ListTransactions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	transactions, err := gh.gamificationService.ListTransactions(c.Request.Context(), rd.UserID, queryInt(c, "limit", 50))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"transactions": transactions})
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"wellquest/internal/model"
	"wellquest/internal/service"
	"wellquest/pkg/auth"
	"wellquest/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type missionRoutes struct {
	as service.AssignmentServiceI
	ms service.MissionRecordServiceI
	a  *auth.JWTAuth
}

func NewMissionRoutes(handler *gin.RouterGroup, as service.AssignmentServiceI, ms service.MissionRecordServiceI, a *auth.JWTAuth) {
	r := &missionRoutes{as: as, ms: ms, a: a}
	h := handler.Group("/missions")
	h.Use(a.AuthMiddleware())
	{
		h.GET("/today", r.GetTodaysMissions)
		h.POST("/refill", r.Refill)
		h.GET("/:id", r.GetMission)
		h.POST("/:id/start", r.StartMission)
		h.POST("/:id/pause", r.PauseMission)
		h.POST("/:id/complete", r.CompleteMission)
		h.PATCH("/:id/progress", r.UpdateProgress)
		h.POST("/:id/feedback", r.AddFeedback)
		h.PUT("/:id/feedback", r.UpdateFeedback)
	}
}

type MissionRecordResponse struct {
	ID          uuid.UUID `json:"id"`
	MissionID   uuid.UUID `json:"mission_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Subtype     string    `json:"subtype"`
	Status      string    `json:"status"`

	RequiredMeters  *int `json:"required_meters,omitempty"`
	ProgressMeters  *int `json:"progress_meters,omitempty"`
	RequiredSeconds *int `json:"required_seconds,omitempty"`
	ProgressSeconds *int `json:"progress_seconds,omitempty"`

	AssignedDate string     `json:"assigned_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	FeedbackComment    *string `json:"feedback_comment,omitempty"`
	FeedbackDifficulty *string `json:"feedback_difficulty,omitempty"`
	FeedbackImageURL   *string `json:"feedback_image_url,omitempty"`
}

func toMissionRecordResponse(rec *model.MissionRecord) MissionRecordResponse {
	resp := MissionRecordResponse{
		ID:              rec.ID,
		MissionID:       rec.MissionID,
		Title:           rec.Title,
		Description:     rec.Description,
		Category:        string(rec.Category),
		Difficulty:      string(rec.Difficulty),
		Subtype:         string(rec.Subtype),
		Status:          string(rec.Status),
		RequiredMeters:  rec.RequiredMeters,
		ProgressMeters:  rec.ProgressMeters,
		RequiredSeconds: rec.RequiredSeconds,
		ProgressSeconds: rec.ProgressSeconds,
		AssignedDate:    rec.AssignedDate.Format("2006-01-02"),
		CompletedAt:     rec.CompletedAt,
		FeedbackComment: rec.FeedbackComment,
	}
	if rec.FeedbackDifficulty != nil {
		d := string(*rec.FeedbackDifficulty)
		resp.FeedbackDifficulty = &d
	}
	resp.FeedbackImageURL = rec.FeedbackImageURL
	return resp
}

func toMissionRecordResponses(recs []*model.MissionRecord) []MissionRecordResponse {
	out := make([]MissionRecordResponse, len(recs))
	for i, rec := range recs {
		out[i] = toMissionRecordResponse(rec)
	}
	return out
}

func (r *missionRoutes) GetTodaysMissions(c *gin.Context) {
	log := logger.Logger()

	callerID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	records, err := r.as.GetTodaysMissions(c.Request.Context(), callerID)
	if err != nil {
		log.Error("failed to get today's missions", zap.Error(err))
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"missions": toMissionRecordResponses(records)})
}

func (r *missionRoutes) Refill(c *gin.Context) {
	log := logger.Logger()

	callerID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	records, err := r.as.Refill(c.Request.Context(), callerID)
	if err != nil {
		log.Error("failed to refill missions", zap.Error(err))
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"missions": toMissionRecordResponses(records)})
}

func respondAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrNoMissionsAvailable):
		c.JSON(http.StatusNotFound, gin.H{"error": "no missions available"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to assign missions"})
	}
}

func (r *missionRoutes) GetMission(c *gin.Context) {
	r.withRecord(c, r.ms.GetByID)
}

func (r *missionRoutes) StartMission(c *gin.Context) {
	r.withRecord(c, r.ms.Start)
}

func (r *missionRoutes) PauseMission(c *gin.Context) {
	r.withRecord(c, r.ms.Pause)
}

func (r *missionRoutes) CompleteMission(c *gin.Context) {
	r.withRecord(c, r.ms.Complete)
}

type UpdateProgressRequest struct {
	Meters  *int `json:"meters"`
	Seconds *int `json:"seconds"`
}

func (r *missionRoutes) UpdateProgress(c *gin.Context) {
	log := logger.Logger()

	callerID, recordID, ok := r.callerAndRecord(c)
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind progress request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var (
		rec *model.MissionRecord
		err error
	)
	switch {
	case req.Meters != nil:
		rec, err = r.ms.UpdateDistanceProgress(c.Request.Context(), recordID, callerID, *req.Meters)
	case req.Seconds != nil:
		rec, err = r.ms.UpdateTimerProgress(c.Request.Context(), recordID, callerID, *req.Seconds)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "meters or seconds is required"})
		return
	}
	if err != nil {
		log.Error("failed to update progress", zap.Error(err))
		respondRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMissionRecordResponse(rec))
}

type FeedbackRequest struct {
	Comment        string  `json:"comment"`
	SelfDifficulty string  `json:"self_difficulty" binding:"required"`
	ImageURL       *string `json:"image_url"`
}

func (r *missionRoutes) AddFeedback(c *gin.Context) {
	r.feedback(c, r.ms.AddFeedback)
}

func (r *missionRoutes) UpdateFeedback(c *gin.Context) {
	r.feedback(c, r.ms.UpdateFeedback)
}

func (r *missionRoutes) feedback(c *gin.Context,
	apply func(ctx context.Context, in service.FeedbackInput) (*model.MissionRecord, error)) {

	log := logger.Logger()

	callerID, recordID, ok := r.callerAndRecord(c)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rec, err := apply(c.Request.Context(), service.FeedbackInput{
		RecordID:       recordID,
		CallerID:       callerID,
		Comment:        req.Comment,
		SelfDifficulty: model.MissionDifficulty(req.SelfDifficulty),
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		log.Error("failed to capture feedback", zap.Error(err))
		respondRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMissionRecordResponse(rec))
}

func (r *missionRoutes) withRecord(c *gin.Context,
	op func(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error)) {

	log := logger.Logger()

	callerID, recordID, ok := r.callerAndRecord(c)
	if !ok {
		return
	}

	rec, err := op(c.Request.Context(), recordID, callerID)
	if err != nil {
		log.Error("mission operation failed",
			zap.String("record_id", recordID.String()), zap.Error(err))
		respondRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMissionRecordResponse(rec))
}

func (r *missionRoutes) callerAndRecord(c *gin.Context) (int64, uuid.UUID, bool) {
	log := logger.Logger()

	callerID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return 0, uuid.Nil, false
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("failed to parse record id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission record id"})
		return 0, uuid.Nil, false
	}

	return callerID, recordID, true
}

func respondRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "mission record not found"})
	case errors.Is(err, service.ErrMissionForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "mission record belongs to another user"})
	case errors.Is(err, service.ErrInvalidMissionStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "operation not allowed in current mission status"})
	case errors.Is(err, service.ErrImageRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required for photo mission feedback"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

package api

import (
	"errors"
	"net/http"

	"wellquest/internal/middleware"
	"wellquest/internal/model"
	"wellquest/internal/service"
	"wellquest/pkg/auth"
	"wellquest/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type catalogRoutes struct {
	cs service.CatalogServiceI
	a  *auth.JWTAuth
}

func NewCatalogRoutes(handler *gin.RouterGroup, cs service.CatalogServiceI, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &catalogRoutes{cs: cs, a: a}
	h := handler.Group("/admin/missions")
	h.Use(a.AuthMiddleware())
	h.Use(authz.AdminOnly())
	{
		h.POST("", r.CreateDefinition)
		h.GET("/:id", r.GetDefinition)
		h.PUT("/:id", r.UpdateDefinition)
	}
}

type MissionDefinitionRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Category        string `json:"category" binding:"required"`
	Difficulty      string `json:"difficulty" binding:"required"`
	Subtype         string `json:"subtype"`
	RequiredMeters  *int   `json:"required_meters"`
	RequiredSeconds *int   `json:"required_seconds"`
}

type MissionDefinitionResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Difficulty      string    `json:"difficulty"`
	Subtype         string    `json:"subtype"`
	RequiredMeters  *int      `json:"required_meters,omitempty"`
	RequiredSeconds *int      `json:"required_seconds,omitempty"`
}

func toDefinitionResponse(def *model.MissionDefinition) MissionDefinitionResponse {
	return MissionDefinitionResponse{
		ID:              def.ID,
		Title:           def.Title,
		Description:     def.Description,
		Category:        string(def.Category),
		Difficulty:      string(def.Difficulty),
		Subtype:         string(def.Subtype),
		RequiredMeters:  def.RequiredMeters,
		RequiredSeconds: def.RequiredSeconds,
	}
}

func (r *catalogRoutes) CreateDefinition(c *gin.Context) {
	log := logger.Logger()

	var req MissionDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind definition request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	def, err := r.cs.CreateDefinition(c.Request.Context(), &model.MissionDefinition{
		Title:           req.Title,
		Description:     req.Description,
		Category:        model.MissionCategory(req.Category),
		Difficulty:      model.MissionDifficulty(req.Difficulty),
		Subtype:         model.MissionSubtype(req.Subtype),
		RequiredMeters:  req.RequiredMeters,
		RequiredSeconds: req.RequiredSeconds,
	})
	if err != nil {
		log.Error("failed to create mission definition", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toDefinitionResponse(def))
}

func (r *catalogRoutes) GetDefinition(c *gin.Context) {
	log := logger.Logger()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission id"})
		return
	}

	def, err := r.cs.GetDefinitionByID(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to get mission definition", zap.Error(err))
		if errors.Is(err, service.ErrMissionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get mission"})
		return
	}

	c.JSON(http.StatusOK, toDefinitionResponse(def))
}

func (r *catalogRoutes) UpdateDefinition(c *gin.Context) {
	log := logger.Logger()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission id"})
		return
	}

	var req MissionDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind definition request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	def, err := r.cs.UpdateDefinition(c.Request.Context(), &model.MissionDefinition{
		ID:              id,
		Title:           req.Title,
		Description:     req.Description,
		Category:        model.MissionCategory(req.Category),
		Difficulty:      model.MissionDifficulty(req.Difficulty),
		RequiredMeters:  req.RequiredMeters,
		RequiredSeconds: req.RequiredSeconds,
	})
	if err != nil {
		log.Error("failed to update mission definition", zap.Error(err))
		if errors.Is(err, service.ErrMissionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toDefinitionResponse(def))
}

// Package api exposes the HTTP surface: paginated scholarship reads, per-user
// status marks, essay generation, and the portal reverse proxy.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/essay"
	"scholar-fetch/internal/scholar/model"
	"scholar-fetch/internal/scholar/service"
	"scholar-fetch/internal/scholar/store"
)

// KeyUpdater rotates the stored Gemini API key. Implemented by
// store.AppConfigStore.
type KeyUpdater interface {
	UpdateGeminiKey(ctx context.Context, key string) error
}

type Server struct {
	Log       *zap.Logger
	Retrieval *service.Retrieval
	Store     *store.SyncStore
	Status    *store.StatusStore
	Essays    *essay.Generator
	Config    KeyUpdater
	Proxy     *Proxy
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/scholarships", s.listScholarships) // ?page=1&limit=20
	r.GET("/users/:userId/scholarships", s.listByStatus)
	r.PUT("/users/:userId/scholarships/:scholarshipId/status", s.setStatus)
	r.DELETE("/users/:userId/scholarships/:scholarshipId/status", s.clearStatus)
	r.POST("/essays", s.generateEssay)
	r.PUT("/config/gemini-key", s.updateGeminiKey)
	r.GET("/proxy/:source/*path", s.Proxy.Handle)
	return r
}

func (s *Server) listScholarships(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	// one session per request chain; cursors never outlive the request
	sess := s.Retrieval.NewSession()
	items, total := sess.GetScholarships(c.Request.Context(), page, limit, nil)
	if total == 0 {
		// every fallback layer came up empty; the only user-visible error case
		c.JSON(http.StatusOK, gin.H{
			"data":  []model.Scholarship{},
			"total": 0,
			"page":  page,
			"limit": limit,
			"error": "failed to fetch scholarships",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (s *Server) listByStatus(c *gin.Context) {
	status, err := model.ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ids, err := s.Status.ListByStatus(c.Request.Context(), c.Param("userId"), status)
	if err != nil {
		s.Log.Error("list status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scholarships"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ids})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// setStatus upserts the (user, scholarship) record. Applied and hidden are
// mutually exclusive; the single record per pair means setting one overwrites
// the other.
func (s *Server) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = s.Status.SetStatus(c.Request.Context(), c.Param("userId"), c.Param("scholarshipId"), status)
	if err != nil {
		s.Log.Error("set status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set status"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearStatus(c *gin.Context) {
	err := s.Status.ClearStatus(c.Request.Context(), c.Param("userId"), c.Param("scholarshipId"))
	if err != nil {
		s.Log.Error("clear status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear status"})
		return
	}
	c.Status(http.StatusNoContent)
}

type geminiKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// updateGeminiKey rotates the operator-managed Gemini credential. Essay
// generation picks up the new key on its next call.
func (s *Server) updateGeminiKey(c *gin.Context) {
	var req geminiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Config.UpdateGeminiKey(c.Request.Context(), req.Key); err != nil {
		s.Log.Error("gemini key update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update key"})
		return
	}
	c.Status(http.StatusNoContent)
}

type essayRequest struct {
	ScholarshipID string         `json:"scholarship_id" binding:"required"`
	BaseEssay     string         `json:"base_essay" binding:"required"`
	Profile       *essay.Profile `json:"profile"`
}

func (s *Server) generateEssay(c *gin.Context) {
	var req essayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sch, err := s.Store.GetByID(c.Request.Context(), req.ScholarshipID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scholarship not found"})
		return
	}
	text, err := s.Essays.GenerateTailoredEssay(c.Request.Context(), req.BaseEssay, sch, req.Profile)
	if err != nil {
		s.Log.Error("essay generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate essay"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"essay": text})
}

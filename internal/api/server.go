package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/model"
	"github.com/pokerjest/stashNfoHook/internal/service"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

// hookRequest is the webhook body, the hookContext part of the plugin
// payload without the wrapper.
type hookRequest struct {
	Type  string       `json:"type"`
	ID    string       `json:"id"`
	Scene *stash.Scene `json:"scene"`
}

// Server exposes the single-scene pipeline over HTTP for setups that call
// the tool remotely instead of through the plugin stdin protocol. Scenes
// are processed one at a time.
type Server struct {
	cfg       *config.Config
	log       *logrus.Logger
	processor *service.Processor
	mu        sync.Mutex
}

func NewServer(cfg *config.Config, log *logrus.Logger, processor *service.Processor) *Server {
	return &Server{cfg: cfg, log: log, processor: processor}
}

func (s *Server) Routes() *gin.Engine {
	gin.SetMode(s.cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/hook", s.handleHook)
	return r
}

func (s *Server) handleHook(c *gin.Context) {
	var req hookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trigger := model.Trigger{HookType: req.Type, Kind: model.TriggerByID, SceneID: req.ID}
	if req.Scene != nil && req.Scene.ID != "" {
		trigger.Kind = model.TriggerInline
		trigger.Scene = req.Scene
		trigger.SceneID = req.Scene.ID
	}

	s.mu.Lock()
	result, err := s.processor.Process(trigger)
	s.mu.Unlock()

	if err != nil {
		s.log.Errorf("Hook processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scene_id": result.SceneID,
		"status":   result.Status,
		"reason":   result.Reason,
	})
}

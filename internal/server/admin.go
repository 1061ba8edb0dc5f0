package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
	settingsdomain "github.com/smallbiznis/siftbridge/internal/settings/domain"
	"go.uber.org/zap"
)

// RegisterAdminRoutes wires the operator-facing endpoints: catalog management
// and the Sift credential settings.
func (s *Server) RegisterAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/products", s.createProduct)
	admin.GET("/settings/sift", s.getSiftSettings)
	admin.PUT("/settings/sift", s.updateSiftSettings)
}

type createProductRequest struct {
	Title      string   `json:"title"`
	SKU        string   `json:"sku"`
	Price      float64  `json:"price"`
	ParentID   string   `json:"parent_id"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	product, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateProductRequest{
		Title:      req.Title,
		SKU:        req.SKU,
		Price:      req.Price,
		ParentID:   req.ParentID,
		Categories: req.Categories,
		Tags:       req.Tags,
	})
	if err != nil {
		if errors.Is(err, catalogdomain.ErrInvalidTitle) || errors.Is(err, catalogdomain.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("product create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

type siftSettingsResponse struct {
	JSKey     string `json:"js_key"`
	APIKeySet bool   `json:"api_key_set"`
	Locked    bool   `json:"locked"`
}

func (s *Server) getSiftSettings(c *gin.Context) {
	ctx := c.Request.Context()

	jsKey, err := s.settings.JSKey(ctx)
	if err != nil {
		s.log.Error("settings read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	// The REST key is never echoed back, only whether one is configured.
	apiKey, err := s.settings.APIKey(ctx)
	if err != nil {
		s.log.Error("settings read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, siftSettingsResponse{
		JSKey:     jsKey,
		APIKeySet: apiKey != "",
		Locked:    s.settings.Locked(settingsdomain.KeyJSKey) || s.settings.Locked(settingsdomain.KeyAPIKey),
	})
}

type updateSiftSettingsRequest struct {
	JSKey  *string `json:"js_key"`
	APIKey *string `json:"api_key"`
}

func (s *Server) updateSiftSettings(c *gin.Context) {
	var req updateSiftSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	ctx := c.Request.Context()

	if req.JSKey != nil {
		if s.settings.Locked(settingsdomain.KeyJSKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "setting_locked"})
			return
		}
		if err := s.settings.Set(ctx, settingsdomain.KeyJSKey, *req.JSKey); err != nil {
			s.log.Error("settings write failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
	}

	if req.APIKey != nil {
		if s.settings.Locked(settingsdomain.KeyAPIKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "setting_locked"})
			return
		}
		if err := s.settings.Set(ctx, settingsdomain.KeyAPIKey, *req.APIKey); err != nil {
			s.log.Error("settings write failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

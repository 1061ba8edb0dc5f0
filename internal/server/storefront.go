package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
	"github.com/smallbiznis/siftbridge/internal/cart"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/session"
	"go.uber.org/zap"
)

// RegisterStorefrontRoutes wires the visitor-facing endpoints. These are the
// places lifecycle events originate.
func (s *Server) RegisterStorefrontRoutes() {
	r := s.engine

	auth := r.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)

	r.PUT("/account/profile", s.updateProfile)

	r.GET("/products/:id", s.getProduct)

	r.GET("/cart", s.getCart)
	r.POST("/cart/items", s.addCartItem)
	r.DELETE("/cart/items/:key", s.removeCartItem)

	r.GET("/snippet.js", s.renderSnippet)
}

type registerRequest struct {
	Email    string         `json:"email"`
	Login    string         `json:"login"`
	Password string         `json:"password"`
	Meta     map[string]any `json:"meta"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := s.accountSvc.Register(c.Request.Context(), accountdomain.RegisterRequest{
		Email:    req.Email,
		Login:    req.Login,
		Password: req.Password,
		Meta:     req.Meta,
	})
	if err != nil {
		s.accountError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	ctx := c.Request.Context()
	user, err := s.accountSvc.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, accountdomain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		s.accountError(c, err)
		return
	}

	h, ok := session.FromContext(ctx)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no_session"})
		return
	}
	h.Data().UserID = user.ID
	if err := h.Save(ctx); err != nil {
		s.log.Error("session save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_save_failed"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) logout(c *gin.Context) {
	ctx := c.Request.Context()

	// Published while the session still references the user, so the
	// notifier can resolve who is logging out.
	s.bus.PublishLoggedOut(ctx, events.LoggedOut{})

	if h, ok := session.FromContext(ctx); ok && h.Data().UserID != 0 {
		h.Data().UserID = 0
		if err := h.Save(ctx); err != nil {
			s.log.Error("session save failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type updateProfileRequest struct {
	Email       string         `json:"email"`
	NewPassword string         `json:"new_password"`
	Meta        map[string]any `json:"meta"`
}

func (s *Server) updateProfile(c *gin.Context) {
	ctx := c.Request.Context()

	h, ok := session.FromContext(ctx)
	if !ok || h.Data().UserID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication_required"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := s.accountSvc.UpdateProfile(ctx, h.Data().UserID, accountdomain.UpdateProfileRequest{
		Email:       req.Email,
		NewPassword: req.NewPassword,
		Meta:        req.Meta,
	})
	if err != nil {
		s.accountError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return
	}

	product, err := s.catalogSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (s *Server) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": s.cartSvc.Lines(c.Request.Context())})
}

type addCartItemRequest struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id"`
	Quantity    int    `json:"quantity"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}

	var variationID snowflake.ID
	if strings.TrimSpace(req.VariationID) != "" {
		variationID, err = snowflake.ParseString(strings.TrimSpace(req.VariationID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_variation_id"})
			return
		}
	}

	line, err := s.cartSvc.Add(c.Request.Context(), productID, variationID, req.Quantity)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		s.log.Error("cart add failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusCreated, line)
}

func (s *Server) removeCartItem(c *gin.Context) {
	err := s.cartSvc.Remove(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		s.log.Error("cart remove failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) renderSnippet(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.snippet.Render(c.Request.Context(), c.Writer); err != nil {
		s.log.Error("snippet render failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

func (s *Server) accountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, accountdomain.ErrInvalidEmail),
		errors.Is(err, accountdomain.ErrInvalidLogin),
		errors.Is(err, accountdomain.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, accountdomain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already_exists"})
	case errors.Is(err, accountdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		s.log.Error("account operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

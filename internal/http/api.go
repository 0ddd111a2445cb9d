package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"funding-dashboard/internal/auth"
	"funding-dashboard/internal/domain"
	"funding-dashboard/internal/service"
	"funding-dashboard/internal/storage"
)

const identityKey = "identity"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	charts service.ChartService
	tokens *auth.Tokens
	logger logrus.FieldLogger
}

func NewHandler(users service.UserService, charts service.ChartService, tokens *auth.Tokens, logger logrus.FieldLogger) *Handler {
	return &Handler{
		users:  users,
		charts: charts,
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.register)
			authGroup.POST("/login", h.login)
		}

		charts := api.Group("/charts", h.requireAuth())
		{
			charts.GET("/summary-chart", h.summaryChart)
			charts.GET("/reports-chart", h.reportsChart)
			charts.POST("/snapshots", h.exportSnapshot)
			charts.GET("/snapshots", h.listSnapshots)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireAuth gates every protected route. Missing, malformed, mis-signed
// and expired tokens all get the same generic 401.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		claims, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// IdentityFromContext returns the claims attached by requireAuth, or nil.
func IdentityFromContext(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(identityKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	_, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	case errors.Is(err, service.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Username already taken"})
	default:
		h.serverError(c, "register user", err)
	}
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		h.serverError(c, "authenticate user", err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.serverError(c, "issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) summaryChart(c *gin.Context) {
	points, err := h.charts.FundingTrend(c.Request.Context())
	if err != nil {
		h.serverError(c, "fetch summary chart", err)
		return
	}

	resp := make([]FundingTrendResponse, len(points))
	for i := range points {
		resp[i] = fundingTrendToResponse(points[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) reportsChart(c *gin.Context) {
	years, err := h.charts.Investments(c.Request.Context())
	if err != nil {
		h.serverError(c, "fetch reports chart", err)
		return
	}

	resp := make([]InvestmentResponse, len(years))
	for i := range years {
		resp[i] = investmentToResponse(years[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportSnapshot(c *gin.Context) {
	location, err := h.charts.ExportSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrStorageNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Snapshot storage is not configured"})
			return
		}
		h.serverError(c, "export snapshot", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"location": location})
}

func (h *Handler) listSnapshots(c *gin.Context) {
	objects, err := h.charts.ListSnapshots(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrStorageNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Snapshot storage is not configured"})
			return
		}
		h.serverError(c, "list snapshots", err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// serverError logs the cause and returns a generic body; internal detail
// never reaches the client.
func (h *Handler) serverError(c *gin.Context, action string, err error) {
	if h.logger != nil {
		h.logger.WithError(err).Errorf("%s failed", action)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}

type FundingTrendResponse struct {
	PeriodLabel    string  `json:"period_label"`
	Year           int     `json:"year"`
	FundingBillion float64 `json:"funding_billion"`
}

type InvestmentResponse struct {
	YearLabel        string  `json:"year_label"`
	Year             int     `json:"year"`
	DealCount        int     `json:"deal_count"`
	DealValueBillion float64 `json:"deal_value_billion"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func fundingTrendToResponse(p domain.FundingTrendPoint) FundingTrendResponse {
	return FundingTrendResponse{
		PeriodLabel:    p.PeriodLabel,
		Year:           p.Year,
		FundingBillion: p.FundingBillion,
	}
}

func investmentToResponse(y domain.InvestmentYear) InvestmentResponse {
	return InvestmentResponse{
		YearLabel:        y.YearLabel,
		Year:             y.Year,
		DealCount:        y.DealCount,
		DealValueBillion: y.DealValueBillion,
	}
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shardforge/worker/internal/dto/generate"
	"github.com/shardforge/worker/internal/service"
)

// GenerateHandler adapts the generation pipelines to HTTP. Routing and auth
// live in the router; this layer only binds requests and maps outcomes to
// status codes.
type GenerateHandler struct {
	service *service.GenerateService
}

func NewGenerateHandler(svc *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{service: svc}
}

// Readme generates a TipTap README document.
// POST /api/generate/readme
func (h *GenerateHandler) Readme(c *gin.Context) {
	var req generate.ReadmeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.service.GenerateReadme(c.Request.Context(), &req)
	writeOutcome(c, outcome, "readme_json")
}

// Ideas generates a list of project ideas.
// POST /api/generate/ideas
func (h *GenerateHandler) Ideas(c *gin.Context) {
	var req generate.IdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.service.GenerateIdeas(c.Request.Context(), &req)
	writeOutcome(c, outcome, "ideas")
}

// Stack generates a technology-stack recommendation.
// POST /api/generate/stack
func (h *GenerateHandler) Stack(c *gin.Context) {
	var req generate.StackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.service.GenerateStack(c.Request.Context(), &req)
	writeOutcome(c, outcome, "recommendation")
}

// Competitive generates a competitive-positioning analysis.
// POST /api/generate/competitive
func (h *GenerateHandler) Competitive(c *gin.Context) {
	var req generate.CompetitiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.service.GenerateCompetitive(c.Request.Context(), &req)
	writeOutcome(c, outcome, "analysis")
}

// Insights generates a repository review.
// POST /api/generate/insights
func (h *GenerateHandler) Insights(c *gin.Context) {
	var req generate.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.service.GenerateInsights(c.Request.Context(), &req)
	writeOutcome(c, outcome, "insights")
}

// writeOutcome maps the three-way pipeline outcome to the HTTP surface.
// Insufficient credits gets its own status so callers can act on it without
// parsing error strings; failure categories pick the code.
func writeOutcome(c *gin.Context, outcome *service.Outcome, payloadKey string) {
	// the client went away; never report a partial result
	if c.Request.Context().Err() == context.Canceled {
		c.Abort()
		return
	}

	switch outcome.Status {
	case service.StatusSuccess:
		c.JSON(http.StatusOK, gin.H{
			payloadKey:     outcome.Payload,
			"used_credits": outcome.UsedCredits,
		})
	case service.StatusInsufficientCredits:
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":        "insufficient_credits",
			"message":      "Not enough AI credits to complete the generation",
			"used_credits": outcome.UsedCredits,
		})
	default:
		c.JSON(failureStatus(outcome.Category), gin.H{
			"error":   outcome.Category,
			"message": outcome.Message,
		})
	}
}

func failureStatus(category string) int {
	switch category {
	case service.CategoryInvalidIdentifier:
		return http.StatusBadRequest
	case service.CategoryAccessDenied:
		return http.StatusForbidden
	default:
		// upstream, parse and schema failures are all operator-actionable
		return http.StatusBadGateway
	}
}

package api

import (
	"net/http"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/service"

	"github.com/gin-gonic/gin"
)

// DietHandler serves the macro tracking and health-score endpoints.
type DietHandler struct {
	dietService service.DietService
}

// NewDietHandler creates a new DietHandler.
func NewDietHandler(dietService service.DietService) *DietHandler {
	return &DietHandler{dietService: dietService}
}

type MacroSetRequest struct {
	Calories  domain.FlexNumber `json:"calories"`
	Protein   domain.FlexNumber `json:"protein"`
	Carbs     domain.FlexNumber `json:"carbs"`
	Fat       domain.FlexNumber `json:"fat"`
	Hydration domain.FlexNumber `json:"hydration"`
}

func (r MacroSetRequest) toMacroSet() domain.MacroSet {
	return domain.MacroSet{
		Calories:  float64(r.Calories),
		Protein:   float64(r.Protein),
		Carbs:     float64(r.Carbs),
		Fat:       float64(r.Fat),
		Hydration: float64(r.Hydration),
	}
}

// GetSettings returns today's counters and targets, rolling the day
// over first when needed.
func (h *DietHandler) GetSettings(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	settings, err := h.dietService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load diet settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateTargets replaces the caller's macro targets.
func (h *DietHandler) UpdateTargets(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	var req MacroSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	settings, err := h.dietService.UpdateTargets(c.Request.Context(), userID, req.toMacroSet())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to update targets")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// AddIntake increments today's running counters.
func (h *DietHandler) AddIntake(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	var req MacroSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	settings, err := h.dietService.AddIntake(c.Request.Context(), userID, req.toMacroSet())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to record intake")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetHealthScore returns today's live score.
func (h *DietHandler) GetHealthScore(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	score, err := h.dietService.GetHealthScore(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute health score")
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}

// GetWeeklyHealthScores returns seven scores for the current week.
func (h *DietHandler) GetWeeklyHealthScores(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	scores, err := h.dietService.GetWeeklyHealthScores(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute weekly scores")
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": scores})
}

package api

import (
	"errors"
	"net/http"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler serves the workout/split catalog and the exercise
// demo-video upload flow.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

type WorkoutRequest struct {
	Title      string                `json:"title" binding:"required"`
	Duration   string                `json:"duration"`
	Difficulty string                `json:"difficulty"`
	Exercises  []domain.ExerciseSpec `json:"exercises" binding:"required,min=1"`
}

type SplitRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Schedule    domain.WeekSchedule `json:"schedule" binding:"required"`
}

type RequestUploadURLRequest struct {
	ExerciseName string `json:"exerciseName" binding:"required"`
	ContentType  string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ExerciseName string `json:"exerciseName" binding:"required"`
	ObjectKey    string `json:"objectKey" binding:"required"`
	FileName     string `json:"fileName" binding:"required"`
	FileSize     int64  `json:"fileSize" binding:"required,gt=0"`
	ContentType  string `json:"contentType" binding:"required"`
}

// --- Workouts ---

// ListWorkouts returns the merged catalog: the caller's personal
// workouts plus the global ones they do not shadow.
func (h *CatalogHandler) ListWorkouts(c *gin.Context) {
	owner, ok := catalogOwner(c)
	if !ok {
		return
	}
	workouts, err := h.catalogService.ListWorkouts(c.Request.Context(), owner)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"workouts": workouts})
}

// CreateWorkout adds a workout; gym owners write the global catalog,
// trainers write their personal one.
func (h *CatalogHandler) CreateWorkout(c *gin.Context) {
	owner, ok := catalogOwner(c)
	if !ok {
		return
	}
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.catalogService.CreateWorkout(c.Request.Context(), owner, domain.Workout{
		Title:      req.Title,
		Duration:   req.Duration,
		Difficulty: req.Difficulty,
		Exercises:  req.Exercises,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create workout")
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// UpdateWorkout edits a workout. Editing a global workout as a trainer
// forks a personal copy instead of mutating the shared definition.
func (h *CatalogHandler) UpdateWorkout(c *gin.Context) {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.catalogService.UpdateWorkout(c.Request.Context(), actorID, domain.Workout{
		ID:         workoutID,
		Title:      req.Title,
		Duration:   req.Duration,
		Difficulty: req.Difficulty,
		Exercises:  req.Exercises,
	})
	if err != nil {
		mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout removes one of the caller's own workouts.
func (h *CatalogHandler) DeleteWorkout(c *gin.Context) {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	if err := h.catalogService.DeleteWorkout(c.Request.Context(), actorID, workoutID); err != nil {
		mapCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Splits ---

// ListSplits returns the caller's personal splits plus the global ones.
func (h *CatalogHandler) ListSplits(c *gin.Context) {
	owner, ok := catalogOwner(c)
	if !ok {
		return
	}
	splits, err := h.catalogService.ListSplits(c.Request.Context(), owner)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list splits")
		return
	}
	c.JSON(http.StatusOK, gin.H{"splits": splits})
}

// CreateSplit adds a weekly split. The schedule accepts both the map
// and list-of-records shapes; normalization happens during binding.
func (h *CatalogHandler) CreateSplit(c *gin.Context) {
	owner, ok := catalogOwner(c)
	if !ok {
		return
	}
	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	split, err := h.catalogService.CreateSplit(c.Request.Context(), owner, domain.WeeklySplit{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
	})
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create split")
		}
		return
	}
	c.JSON(http.StatusCreated, split)
}

// DeleteSplit removes one of the caller's own splits.
func (h *CatalogHandler) DeleteSplit(c *gin.Context) {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	splitID, err := primitive.ObjectIDFromHex(c.Param("splitId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid split ID format")
		return
	}

	if err := h.catalogService.DeleteSplit(c.Request.Context(), actorID, splitID); err != nil {
		mapCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Demo videos ---

// RequestVideoUploadURL returns a presigned PUT URL for an exercise
// demo video.
func (h *CatalogHandler) RequestVideoUploadURL(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.catalogService.RequestVideoUploadURL(c.Request.Context(), trainerID, workoutID, req.ExerciseName, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVideoType):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrExerciseNotInWorkout):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCatalogAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmVideoUpload records upload metadata after the client PUT the
// file to storage, and links the video to its exercise.
func (h *CatalogHandler) ConfirmVideoUpload(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upload, err := h.catalogService.ConfirmVideoUpload(c.Request.Context(), trainerID, workoutID, req.ExerciseName, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrExerciseNotInWorkout):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCatalogAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload")
		}
		return
	}
	c.JSON(http.StatusCreated, upload)
}

// GetVideoDownloadURL returns a presigned GET URL for an exercise's
// demo video (?exercise=name).
func (h *CatalogHandler) GetVideoDownloadURL(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}
	exerciseName := c.Query("exercise")
	if exerciseName == "" {
		abortWithError(c, http.StatusBadRequest, "exercise query parameter is required")
		return
	}

	url, err := h.catalogService.GetVideoDownloadURL(c.Request.Context(), workoutID, exerciseName)
	if err != nil {
		mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// catalogOwner maps the caller onto a catalog scope: gym owners work on
// the global catalog (nil), trainers on their personal one.
func catalogOwner(c *gin.Context) (*primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return nil, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token")
		return nil, false
	}
	if role == domain.RoleOwner {
		return nil, true
	}
	return &userID, true
}

func mapCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrSplitNotFound), errors.Is(err, service.ErrExerciseNotInWorkout):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCatalogAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Catalog operation failed")
	}
}

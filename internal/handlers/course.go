package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/requestdata"
	"github.com/hybridlms/backend/internal/services"
	"github.com/hybridlms/backend/internal/types"
)

type CourseHandler struct {
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (ch *CourseHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	category, err := ch.courseService.CreateCategory(c.Request.Context(), &types.Category{Name: req.Name, Slug: req.Slug})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, category)
}

func (ch *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := ch.courseService.ListCategories(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"categories": categories})
}

func (ch *CourseHandler) CreateCourse(c *gin.Context) {
	var req struct {
		Title           string         `json:"title"`
		Description     string         `json:"description"`
		CategoryID      *uuid.UUID     `json:"category_id"`
		DifficultyLevel string         `json:"difficulty_level"`
		LearningStyle   string         `json:"learning_style"`
		IsPublished     bool           `json:"is_published"`
		Metadata        datatypes.JSON `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	course := types.Course{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		InstructorID:    rd.UserID,
		DifficultyLevel: req.DifficultyLevel,
		LearningStyle:   req.LearningStyle,
		IsPublished:     req.IsPublished,
		Metadata:        req.Metadata,
	}
	created, err := ch.courseService.CreateCourse(c.Request.Context(), &course)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (ch *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	course, err := ch.courseService.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) ListCourses(c *gin.Context) {
	filter := repos.CourseFilter{
		DifficultyLevel: c.Query("difficulty_level"),
		PublishedOnly:   c.Query("include_unpublished") != "true",
		Limit:           queryInt(c, "limit", 20),
		Offset:          queryInt(c, "offset", 0),
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		filter.CategoryID = &categoryID
	}
	courses, total, err := ch.courseService.ListCourses(c.Request.Context(), filter)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses, "total": total})
}

func (ch *CourseHandler) Enroll(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	enrollment, err := ch.courseService.Enroll(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, enrollment)
}

func (ch *CourseHandler) Complete(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	enrollment, err := ch.courseService.Complete(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, enrollment)
}

func (ch *CourseHandler) ListEnrollments(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	enrollments, err := ch.courseService.ListEnrollments(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"enrollments": enrollments})
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return v
}

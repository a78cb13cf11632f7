package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studytrack/studytrack-api/internal/models"
	"github.com/studytrack/studytrack-api/internal/service"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/response"
)

// ClassHandler exposes class roster endpoints. Student-facing reads
// resolve membership through the caller's school ID, so it needs the
// user service alongside the class service.
type ClassHandler struct {
	classes *service.ClassService
	users   *service.UserService
}

// NewClassHandler creates a new handler.
func NewClassHandler(classes *service.ClassService, users *service.UserService) *ClassHandler {
	return &ClassHandler{classes: classes, users: users}
}

// List godoc
// @Summary List classes
// @Description Owned classes for teachers, enrolled classes for students
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	schoolID, err := h.schoolID(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	classes, err := h.classes.ListFor(c.Request.Context(), claims, schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, classes, map[string]interface{}{"count": len(classes)})
}

// Get godoc
// @Summary Get class with roster
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	schoolID, err := h.schoolID(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.classes.Get(c.Request.Context(), claims, schoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}

	class, err := h.classes.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.UpdateClassRequest true "Partial edits"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}

	class, err := h.classes.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 204 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.classes.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddStudent godoc
// @Summary Enrol student
// @Description Add a student to the roster by school ID
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.AddStudentRequest true "Enrolment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/students [post]
func (h *ClassHandler) AddStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrolment payload"))
		return
	}

	class, err := h.classes.AddStudent(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

// RemoveStudent godoc
// @Summary Remove student
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Param schoolId path string true "School ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/students/{schoolId} [delete]
func (h *ClassHandler) RemoveStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	class, err := h.classes.RemoveStudent(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("schoolId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

func (h *ClassHandler) schoolID(c *gin.Context, claims *models.JWTClaims) (string, error) {
	if claims.Role != models.RoleStudent {
		return "", nil
	}
	info, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return "", err
	}
	return info.SchoolID, nil
}

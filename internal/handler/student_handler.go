package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-admin-api/internal/dto"
	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/service"
	"github.com/noah-isme/library-admin-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, req service.StudentListRequest) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	BulkUpdate(ctx context.Context, reqs []service.UpdateStudentRequest) ([]models.Student, error)
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}

// StudentHandler exposes membership endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param gender query string false "Male or Female"
// @Param search query string false "Search by name or enrollment"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), service.StudentListRequest{
		Gender: strings.TrimSpace(c.Query("gender")),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   pageQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// BulkUpdate godoc
// @Summary Update several students at once
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body []service.UpdateStudentRequest true "Students"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students/bulk [put]
func (h *StudentHandler) BulkUpdate(c *gin.Context) {
	var reqs []service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	students, err := h.students.BulkUpdate(c.Request.Context(), reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// BulkDelete godoc
// @Summary Remove students
// @Description Loans keep their enrollment snapshot
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.BulkDeleteRequest true "IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/bulk-delete [post]
func (h *StudentHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	deleted, err := h.students.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BulkDeleteResponse{Deleted: deleted}, nil)
}

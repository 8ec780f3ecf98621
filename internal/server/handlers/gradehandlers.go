package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Search lists every record whose course contains course_name.
func (h *Handler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.Search(param(c, "course_name")))
}

// Suggest lists distinct course names containing query.
func (h *Handler) Suggest(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.Suggest(param(c, "query")))
}

// GetYears lists the years a course was offered.
func (h *Handler) GetYears(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.Years(param(c, "course_name")))
}

// GetSemesters lists the semesters of a course within a year.
func (h *Handler) GetSemesters(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.Semesters(
		param(c, "course_name"),
		param(c, "year"),
	))
}

// GetGrades lists the grade counts of one course offering, sorted by grade.
func (h *Handler) GetGrades(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.Grades(
		param(c, "course_name"),
		param(c, "year"),
		param(c, "semester"),
	))
}

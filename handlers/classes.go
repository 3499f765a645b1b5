package handlers

import (
	"cmp"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/classloader/models"
	"github.com/coursehub/classloader/store"
)

// Classes returns every class, optionally only those of one department,
// ordered by course number.
func (h *Handler) Classes(c echo.Context) error {
	var filters []store.Where
	if dept := strings.TrimSpace(c.QueryParam("department")); dept != "" {
		filters = append(filters, store.Where{Field: models.FieldDepartment, Value: dept})
	}

	docs, err := h.store.List(c.Request().Context(), h.collection, filters...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]models.ClassDocument, len(docs))
	for i, d := range docs {
		result[i] = models.ClassFromFields(d.ID, d.Fields)
	}
	slices.SortStableFunc(result, func(a, b models.ClassDocument) int {
		return cmp.Or(
			cmp.Compare(a.Department, b.Department),
			cmp.Compare(a.CourseNumValue, b.CourseNumValue),
		)
	})

	return c.JSON(http.StatusOK, result)
}

// Class returns a single class by document id.
func (h *Handler) Class(c echo.Context) error {
	id := c.Param("id")

	doc, err := h.store.Get(c.Request().Context(), h.collection, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "class not found")
	case errors.Is(err, store.ErrInvalidPath):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.ClassFromFields(doc.ID, doc.Fields))
}

package blobstore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mfreeborn/patient-list-generator/pkg/pagination"
)

// Handler serves the archive over HTTP.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the archive routes on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/lists", h.handleSearch)
	g.GET("/lists/:id", h.handleDownload)
	g.GET("/lists/:id/metadata", h.handleGetMetadata)
	g.DELETE("/lists/:id", h.handleDelete)
}

func (h *Handler) handleDownload(c echo.Context) error {
	rc, meta, err := h.store.Download(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *Handler) handleGetMetadata(c echo.Context) error {
	meta, err := h.store.GetMetadata(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, meta)
}

func (h *Handler) handleDelete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleSearch(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := SearchParams{
		Team:   c.QueryParam("team"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
	var err error
	if params.GeneratedAfter, err = dateParam(c, "after"); err != nil {
		return err
	}
	if params.GeneratedBefore, err = dateParam(c, "before"); err != nil {
		return err
	}
	if params.GeneratedBefore != nil {
		// inclusive of the whole day
		end := params.GeneratedBefore.Add(24*time.Hour - time.Nanosecond)
		params.GeneratedBefore = &end
	}

	items, total, err := h.store.Search(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Metadata{}
	}
	resp := pagination.NewResponse(items, total, pg.Limit, pg.Offset)
	resp.Links = pg.Links(c.Request().URL, total)
	return c.JSON(http.StatusOK, resp)
}

func dateParam(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: want yyyy-mm-dd", name))
	}
	return &t, nil
}

func storeError(err error) error {
	if errors.Is(err, ErrListNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

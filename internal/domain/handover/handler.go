package handover

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
	"github.com/mfreeborn/patient-list-generator/internal/domain/team"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
	"github.com/mfreeborn/patient-list-generator/internal/platform/blobstore"
	"github.com/mfreeborn/patient-list-generator/internal/platform/inpatients"
)

// Response headers describing a generated list.
const (
	HeaderArchiveID   = "X-Archive-Id"
	HeaderPatients    = "X-Patient-Count"
	HeaderNewPatients = "X-New-Patient-Count"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/teams", h.ListTeams)
	api.GET("/wards", h.ListWards)
	api.POST("/teams/:team/lists", h.GenerateList)
}

type teamResponse struct {
	Name        string   `json:"name"`
	HomeWard    string   `json:"home_ward"`
	Consultants []string `json:"consultants"`
}

func (h *Handler) ListTeams(c echo.Context) error {
	teams := team.All()
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, teamResponse{Name: t.Name, HomeWard: t.HomeWard.String(), Consultants: t.ConsultantNames()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListWards(c echo.Context) error {
	wards := ward.All()
	out := make([]string, 0, len(wards))
	for _, w := range wards {
		out = append(out, w.String())
	}
	return c.JSON(http.StatusOK, out)
}

// GenerateList takes the previous list as the multipart field "file" and
// responds with the regenerated workbook.
func (h *Handler) GenerateList(c echo.Context) error {
	t, err := team.Lookup(c.Param("team"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if file.Size > blobstore.MaxFileSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, blobstore.ErrFileTooLarge.Error())
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	res, err := h.svc.Generate(c.Request().Context(), GenerateRequest{Team: t, Input: src})
	if err != nil {
		return generateError(err)
	}

	hdr := c.Response().Header()
	hdr.Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, res.FileName))
	hdr.Set(HeaderPatients, strconv.Itoa(res.Patients))
	hdr.Set(HeaderNewPatients, strconv.Itoa(res.NewPatients))
	if res.ArchiveID != "" {
		hdr.Set(HeaderArchiveID, res.ArchiveID)
	}
	return c.Blob(http.StatusOK, blobstore.ContentTypeXLSX, res.Content)
}

// generateError maps a generation failure onto an HTTP status.
func generateError(err error) error {
	var (
		parseErr  *patient.ParseError
		formatErr *location.FormatError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &formatErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, inpatients.ErrMissingCredentials), errors.Is(err, inpatients.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, inpatients.ErrSource):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

package http

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/glider-terrain/internal/adapter/interp"
	"go.ngs.io/glider-terrain/internal/domain"
	"go.ngs.io/glider-terrain/internal/flight"
	"go.ngs.io/glider-terrain/internal/overlay"
	"go.ngs.io/glider-terrain/internal/usecase"
)

// maxTrackFixes bounds the number of fixes in a flight track request.
const maxTrackFixes = 100000

// maxTrackBodyBytes bounds the flight track request body before it is decoded.
var maxTrackBodyBytes int64 = 16 << 20

// Handler handles HTTP requests for the terrain map.
type Handler struct {
	terrain *usecase.Terrain
}

// NewHandler creates a new HTTP handler.
func NewHandler(terrain *usecase.Terrain) *Handler {
	return &Handler{
		terrain: terrain,
	}
}

// ElevationResponse is the response of GET /v1/elevation.
type ElevationResponse struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ElevationM float64 `json:"elevation_m"`
	Label      string  `json:"label"`
	InsideMap  bool    `json:"inside_map"`
	U          float64 `json:"u"`
	V          float64 `json:"v"`
}

// TrackRequest is the body of POST /v1/flight/track.
type TrackRequest struct {
	Fixes []flight.Fix `json:"fixes"`
}

// GetMap handles GET /v1/map.
func (h *Handler) GetMap(c *gin.Context) {
	c.JSON(http.StatusOK, h.terrain.Metadata())
}

// GetMesh handles GET /v1/mesh.
func (h *Handler) GetMesh(c *gin.Context) {
	data, err := h.terrain.MeshExport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="terrain.msgpack.zst"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// GetTexture handles GET /v1/texture.
func (h *Handler) GetTexture(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.terrain.WriteTexture(&buf); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

// GetPick handles GET /v1/pick. A missing or negative cell means the
// pointer is not over the terrain and yields a hidden overlay.
func (h *Handler) GetPick(c *gin.Context) {
	cellStr := c.Query("cell")
	if cellStr == "" {
		c.JSON(http.StatusOK, h.terrain.Pick(overlay.Pick{}))
		return
	}

	cell, err := strconv.Atoi(cellStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid cell: %v", err)})
		return
	}
	if cell < 0 {
		c.JSON(http.StatusOK, h.terrain.Pick(overlay.Pick{}))
		return
	}

	px, err := parseUnit(c, "px")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	py, err := parseUnit(c, "py")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.terrain.Pick(overlay.Pick{CellID: cell, PX: px, PY: py, OK: true}))
}

// GetElevation handles GET /v1/elevation.
func (h *Handler) GetElevation(c *gin.Context) {
	lat, lon, ok := parseLatLon(c)
	if !ok {
		return
	}

	elevation, err := h.terrain.ElevationAt(lat, lon)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := ElevationResponse{
		Lat:        lat,
		Lon:        lon,
		ElevationM: elevation,
		Label:      overlay.Label(elevation),
	}
	if u, v, inside, err := h.terrain.Locate(lat, lon); err == nil {
		resp.InsideMap = inside
		resp.U, resp.V = u, v
	}
	c.JSON(http.StatusOK, resp)
}

// GetProject handles GET /v1/project.
func (h *Handler) GetProject(c *gin.Context) {
	northingStr := c.Query("northing")
	eastingStr := c.Query("easting")
	if northingStr == "" || eastingStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "northing and easting parameters are required"})
		return
	}
	northing, err := strconv.ParseFloat(northingStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid northing: %v", err)})
		return
	}
	easting, err := strconv.ParseFloat(eastingStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid easting: %v", err)})
		return
	}
	if !finite(northing) || !finite(easting) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "northing and easting must be finite"})
		return
	}

	points, err := h.terrain.Project([]domain.ProjectedPoint{{Northing: northing, Easting: easting}})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points[0])
}

// PostTrack handles POST /v1/flight/track.
func (h *Handler) PostTrack(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTrackBodyBytes)

	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if len(req.Fixes) > maxTrackFixes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("too many fixes (%d), at most %d", len(req.Fixes), maxTrackFixes)})
		return
	}

	track, err := h.terrain.Track(req.Fixes)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, track)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps terrain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, interp.ErrOutOfGrid):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCoordinateTransform),
		errors.Is(err, domain.ErrDomain),
		errors.Is(err, domain.ErrInvalidCell):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseLatLon(c *gin.Context) (lat, lon float64, ok bool) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be numbers"})
		return 0, 0, false
	}
	if lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude must be between -90 and 90"})
		return 0, 0, false
	}
	if lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "longitude must be between -180 and 180"})
		return 0, 0, false
	}
	return lat, lon, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseUnit reads a required query parameter in [0, 1].
func parseUnit(c *gin.Context, key string) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return 0, fmt.Errorf("%s parameter is required", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	if !(v >= 0 && v <= 1) {
		return 0, fmt.Errorf("%s must be between 0 and 1", key)
	}
	return v, nil
}

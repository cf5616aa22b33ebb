package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"movie-explorer/internal/engine"
	"movie-explorer/internal/models"
	"movie-explorer/internal/services"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// MovieHandler handles movie explorer API endpoints
type MovieHandler struct {
	explorer *services.ExplorerService
	catalog  *services.Catalog
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(
	explorer *services.ExplorerService,
	catalog *services.Catalog,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *MovieHandler {
	return &MovieHandler{
		explorer: explorer,
		catalog:  catalog,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// OptionsResponse is the body of GET /api/options
type OptionsResponse struct {
	ScoreOptions []float64 `json:"score_options"`
	OscarOptions []int     `json:"oscar_options"`
	DateMin      string    `json:"date_min"`
	DateMax      string    `json:"date_max"`
	Defaults     Criteria  `json:"defaults"`
}

// Criteria is the wire form of models.FilterCriteria
type Criteria struct {
	MinScore  float64 `json:"min_score"`
	MinOscars int     `json:"min_oscars"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// ViewsResponse is the body of GET /api/views
type ViewsResponse struct {
	Criteria    Criteria            `json:"criteria"`
	ScoreSeries []models.ScorePoint `json:"score_series"`
	OscarSeries models.OscarSeries  `json:"oscar_series"`
	Figures     Figures             `json:"figures"`
}

// Figures holds the chart labels of both series
type Figures struct {
	Score models.FigureMeta `json:"score"`
	Oscar models.FigureMeta `json:"oscar"`
}

func toCriteria(c models.FilterCriteria) Criteria {
	return Criteria{
		MinScore:  c.MinMetacriticScore,
		MinOscars: c.MinOscarsWon,
		StartDate: c.DateStart.Format(engine.DateLayout),
		EndDate:   c.DateEnd.Format(engine.DateLayout),
	}
}

// GetOptions handles GET /api/options
func (h *MovieHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/options").Observe(time.Since(startTime).Seconds())
	}()

	opts := h.explorer.Options()
	response := OptionsResponse{
		ScoreOptions: opts.ScoreOptions,
		OscarOptions: opts.OscarOptions,
		DateMin:      opts.DateMin.Format(engine.DateLayout),
		DateMax:      opts.DateMax.Format(engine.DateLayout),
		Defaults:     toCriteria(h.explorer.DefaultCriteria()),
	}

	h.metrics.RecordAPIRequest("/api/options", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetViews handles GET /api/views
func (h *MovieHandler) GetViews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/views").Observe(time.Since(startTime).Seconds())
	}()

	criteria, err := parseCriteria(r.URL.Query(), h.explorer.DefaultCriteria())
	if err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/views")
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	views, err := h.explorer.Views(ctx, criteria)
	if err != nil {
		var invalid *models.InvalidCriteriaError
		if errors.As(err, &invalid) {
			h.metrics.RecordInvalidCriteria("http")
			h.sendError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error(ctx, "[API_GET_VIEWS_ERROR] Failed to compute views", logging.Fields{
			"criteria": toCriteria(criteria),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/views")
		h.sendError(w, r, "failed to compute views", http.StatusInternalServerError)
		return
	}

	response := ViewsResponse{
		Criteria:    toCriteria(criteria),
		ScoreSeries: views.ScoreSeries,
		OscarSeries: views.OscarSeries,
		Figures: Figures{
			Score: models.ScoreFigure,
			Oscar: models.OscarFigure,
		},
	}

	h.metrics.RecordAPIRequest("/api/views", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetMovies handles GET /api/movies
func (h *MovieHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/movies").Observe(time.Since(startTime).Seconds())
	}()

	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	page := 1
	limit := defaultPageLimit

	if pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= maxPageLimit {
			limit = l
		}
	}

	// pages past the addressable range are empty rather than wrapping around
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	movies, total := h.explorer.Movies(offset, limit)

	response := PaginatedResponse{
		Data:       movies,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest("/api/movies", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *MovieHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"source":    h.catalog.Source,
		"records":   h.catalog.Dataset.Len(),
		"loaded_at": h.catalog.LoadedAt.Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// parseCriteria overlays the query parameters on defaults. Absent parameters
// keep their default value; malformed ones are an error.
func parseCriteria(q url.Values, defaults models.FilterCriteria) (models.FilterCriteria, error) {
	c := defaults

	if s := q.Get("min_score"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c, fmt.Errorf("invalid min_score %q, expected a number", s)
		}
		c.MinMetacriticScore = v
	}

	if s := q.Get("min_oscars"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return c, fmt.Errorf("invalid min_oscars %q, expected an integer", s)
		}
		c.MinOscarsWon = v
	}

	if s := q.Get("start_date"); s != "" {
		d, err := time.Parse(engine.DateLayout, s)
		if err != nil {
			return c, fmt.Errorf("invalid start_date format, expected YYYY-MM-DD")
		}
		c.DateStart = d
	}

	if s := q.Get("end_date"); s != "" {
		d, err := time.Parse(engine.DateLayout, s)
		if err != nil {
			return c, fmt.Errorf("invalid end_date format, expected YYYY-MM-DD")
		}
		c.DateEnd = d
	}

	return c, nil
}

// sendJSON sends a JSON response
func (h *MovieHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *MovieHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all movie API routes
func (h *MovieHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/options", h.GetOptions).Methods("GET")
	router.HandleFunc("/api/views", h.GetViews).Methods("GET")
	router.HandleFunc("/api/movies", h.GetMovies).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

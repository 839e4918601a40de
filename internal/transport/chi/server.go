package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qeats/internal/domain"
	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
	logpkg "github.com/kailas-cloud/qeats/internal/logger"
	healthuc "github.com/kailas-cloud/qeats/internal/usecase/health"
	menuuc "github.com/kailas-cloud/qeats/internal/usecase/menu"
	restaurantuc "github.com/kailas-cloud/qeats/internal/usecase/restaurant"
	"github.com/kailas-cloud/qeats/internal/version"
)

// API routes.
const (
	RestaurantsPath = "/qeats/v1/restaurants"
	MenuPath        = "/qeats/v1/menu"
	MenuItemPath    = "/qeats/v1/menu/items/{itemId}"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest    = "bad_request"
	codeMenuNotFound  = "menu_not_found"
	codeItemNotFound  = "item_not_found"
	codeInternalError = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the qeats HTTP API.
type Server struct {
	restaurants   *restaurantuc.Service
	menus         *menuuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	now           func() time.Time
	location      *time.Location
	concurrent    bool
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	restaurants *restaurantuc.Service,
	menus *menuuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		restaurants: restaurants,
		menus:       menus,
		health:      health,
		logger:      logger,
		now:         time.Now,
		location:    time.Local,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidCoordinates, http.StatusBadRequest, codeBadRequest),
			sentinelHandler(domain.ErrMenuNotFound, http.StatusNotFound, codeMenuNotFound),
			sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		},
	}
}

// WithClock sets the wall clock and the timezone used to derive the time of day.
func (s *Server) WithClock(now func() time.Time, loc *time.Location) *Server {
	if now != nil {
		s.now = now
	}
	if loc != nil {
		s.location = loc
	}
	return s
}

// WithConcurrentSearch switches text search to the parallel fan-out.
func (s *Server) WithConcurrentSearch(enabled bool) *Server {
	s.concurrent = enabled
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r gochi.Router) {
	r.Get(RestaurantsPath, s.GetRestaurants)
	r.Get(MenuPath, s.GetMenu)
	r.Get(MenuItemPath, s.GetMenuItem)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// GetRestaurants handles GET /qeats/v1/restaurants?latitude=&longitude=&searchFor=.
// Without searchFor it lists nearby open restaurants.
func (s *Server) GetRestaurants(w http.ResponseWriter, r *http.Request) {
	p, err := parsePoint(r)
	if errors.Is(err, domain.ErrInvalidCoordinates) {
		s.handleDomainError(w, r, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	at := schedule.At(s.now().In(s.location))
	query := r.URL.Query().Get("searchFor")

	logpkg.FromContext(ctx).Debug("get restaurants",
		zap.Float64("latitude", p.Lat),
		zap.Float64("longitude", p.Lon),
		zap.String("search_for", query),
		zap.Stringer("at", at),
	)

	var found []restaurantResponse
	switch {
	case query == "":
		list, err := s.restaurants.FindNearbyOpen(ctx, p, at)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		found = restaurantsToResponse(list)
	case s.concurrent:
		list, err := s.restaurants.SearchConcurrent(ctx, p, query, at)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		found = restaurantsToResponse(list)
	default:
		list, err := s.restaurants.Search(ctx, p, query, at)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		found = restaurantsToResponse(list)
	}

	writeJSON(w, http.StatusOK, getRestaurantsResponse{Restaurants: found})
}

// GetMenu handles GET /qeats/v1/menu?restaurantId=.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurantId")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "restaurantId is required")
		return
	}

	m, err := s.menus.FindMenu(r.Context(), restaurantID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, getMenuResponse{Menu: menuToResponse(&m)})
}

// GetMenuItem handles GET /qeats/v1/menu/items/{itemId}?restaurantId=.
func (s *Server) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurantId")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "restaurantId is required")
		return
	}

	it, err := s.menus.FindItem(r.Context(), restaurantID, gochi.URLParam(r, "itemId"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, getItemResponse{Item: itemToResponse(&it)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.String(),
	})
}

// parsePoint reads and range-checks the latitude and longitude query parameters.
func parsePoint(r *http.Request) (geo.Point, error) {
	q := r.URL.Query()
	latRaw, lonRaw := q.Get("latitude"), q.Get("longitude")
	if latRaw == "" || lonRaw == "" {
		return geo.Point{}, errors.New("latitude and longitude are required")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return geo.Point{}, errors.New("latitude must be a number")
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return geo.Point{}, errors.New("longitude must be a number")
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return geo.Point{}, domain.ErrInvalidCoordinates
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			logpkg.FromContext(r.Context()).Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

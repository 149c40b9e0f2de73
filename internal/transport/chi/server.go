package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/domain"
	"github.com/homegrid/mapsearch/internal/domain/geo"
	"github.com/homegrid/mapsearch/internal/domain/listing"
	"github.com/homegrid/mapsearch/internal/domain/search/filter"
	"github.com/homegrid/mapsearch/internal/domain/search/mode"
	"github.com/homegrid/mapsearch/internal/domain/search/request"
	healthuc "github.com/homegrid/mapsearch/internal/usecase/health"
)

// defaultZoom applies when a search request omits the zoom parameter.
const defaultZoom = 12.0

const (
	defaultMaxIngest    = 500
	defaultQueryTimeout = 10 * time.Second
)

// Limits carries the request bounds from configuration.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxIngest       int
	QueryTimeout    time.Duration
}

// withDefaults fills unset limits, so tests and callers without config
// get working bounds.
func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = request.DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = request.MaxPageSize
	}
	if l.MaxIngest <= 0 {
		l.MaxIngest = defaultMaxIngest
	}
	if l.QueryTimeout <= 0 {
		l.QueryTimeout = defaultQueryTimeout
	}
	return l
}

// ListingsQueries serves the viewport queries and single-listing reads.
type ListingsQueries interface {
	GetClusters(ctx context.Context, req *request.Request) ([]listing.Cluster, int, error)
	GetFiltered(ctx context.Context, req *request.Request) ([]listing.Listing, int, int, error)
	GetListing(ctx context.Context, key string) (listing.Listing, error)
}

// ListingsIngest mutates the listings index.
type ListingsIngest interface {
	Upsert(ctx context.Context, items []listing.Listing) error
	Remove(ctx context.Context, keys []string) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the listings search API over chi.
type Server struct {
	queries       ListingsQueries
	ingest        ListingsIngest
	health        *healthuc.Service
	logger        *zap.Logger
	limits        Limits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	queries ListingsQueries,
	ingest ListingsIngest,
	health *healthuc.Service,
	logger *zap.Logger,
	limits Limits,
) *Server {
	s := &Server{
		queries: queries,
		ingest:  ingest,
		health:  health,
		logger:  logger,
		limits:  limits.withDefaults(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoRegion, http.StatusBadRequest, codeNoRegion),
		sentinelHandler(domain.ErrInvalidRegion, http.StatusBadRequest, codeInvalidRegion),
		sentinelHandler(domain.ErrInvalidListing, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrQueryFailed, http.StatusBadGateway, codeQueryFailed),
	}
	return s
}

// Routes assembles the API router.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search/clusters", s.SearchClusters)
		r.Get("/search/listings", s.SearchListings)
		r.Get("/listings/{key}", s.GetListing)
		r.Put("/listings", s.UpsertListings)
		r.Delete("/listings", s.DeleteListings)
	})
	return r
}

// SearchClusters handles GET /api/v1/search/clusters.
func (s *Server) SearchClusters(w http.ResponseWriter, r *http.Request) {
	req, err := s.searchRequestFromQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.limits.QueryTimeout)
	defer cancel()
	clusters, count, err := s.queries.GetClusters(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]ClusterResponse, len(clusters))
	for i := range clusters {
		items[i] = clusterToDTO(&clusters[i])
	}

	writeJSON(w, http.StatusOK, ClusterListResponse{
		Items: items,
		Count: count,
		Mode:  string(mode.Select(count, req.Zoom())),
	})
}

// SearchListings handles GET /api/v1/search/listings.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	req, err := s.searchRequestFromQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.limits.QueryTimeout)
	defer cancel()
	list, count, pages, err := s.queries.GetFiltered(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]ListingResponse, len(list))
	for i := range list {
		items[i] = listingToDTO(&list[i])
	}

	writeJSON(w, http.StatusOK, ListingListResponse{
		Items: items,
		Count: count,
		Page:  req.Page(),
		Pages: pages,
	})
}

// GetListing handles GET /api/v1/listings/{key}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "listing key is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.limits.QueryTimeout)
	defer cancel()
	l, err := s.queries.GetListing(ctx, key)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingToDTO(&l))
}

// UpsertListings handles PUT /api/v1/listings.
func (s *Server) UpsertListings(w http.ResponseWriter, r *http.Request) {
	var req UpsertListingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Listings) == 0 || len(req.Listings) > s.limits.MaxIngest {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("listings count must be between 1 and %d", s.limits.MaxIngest))
		return
	}

	items := make([]listing.Listing, 0, len(req.Listings))
	for _, dto := range req.Listings {
		l, err := listingFromDTO(dto)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		items = append(items, l)
	}

	if err := s.ingest.Upsert(r.Context(), items); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UpsertListingsResponse{Stored: len(items)})
}

// DeleteListings handles DELETE /api/v1/listings.
func (s *Server) DeleteListings(w http.ResponseWriter, r *http.Request) {
	var req DeleteListingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Keys) == 0 || len(req.Keys) > s.limits.MaxIngest {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("keys count must be between 1 and %d", s.limits.MaxIngest))
		return
	}

	if err := s.ingest.Remove(r.Context(), req.Keys); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
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

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchRequestFromQuery builds a search request from URL parameters.
// The region comes from either a polygon ("lat,lng|lat,lng|...") or the
// four viewport bounds; polygon wins when both are present.
func (s *Server) searchRequestFromQuery(q url.Values) (*request.Request, error) {
	region, err := regionFromQuery(q)
	if err != nil {
		return nil, err
	}

	zoom := defaultZoom
	if v := q.Get("zoom"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse zoom: %w", domain.ErrInvalidRegion)
		}
		zoom = z
	}

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return nil, fmt.Errorf("parse page %q: %w", v, domain.ErrInvalidRegion)
		}
		page = p
	}

	pageSize := s.limits.DefaultPageSize
	if v := q.Get("page_size"); v != "" {
		ps, err := strconv.Atoi(v)
		if err != nil || ps < 1 || ps > s.limits.MaxPageSize {
			return nil, fmt.Errorf("parse page_size %q: %w", v, domain.ErrInvalidRegion)
		}
		pageSize = ps
	}

	req, err := request.New(region, filtersFromQuery(q), zoom, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func regionFromQuery(q url.Values) (geo.Region, error) {
	if raw := q.Get("polygon"); raw != "" {
		points, err := parsePolygonParam(raw)
		if err != nil {
			return geo.Region{}, err
		}
		poly, ok := geo.Normalize(points)
		if !ok {
			return geo.Region{}, fmt.Errorf("polygon needs at least %d distinct points: %w",
				geo.MinPolygonPoints, domain.ErrInvalidRegion)
		}
		return geo.PolygonRegion(poly), nil
	}

	raw := [4]string{q.Get("north"), q.Get("south"), q.Get("east"), q.Get("west")}
	if raw[0] == "" && raw[1] == "" && raw[2] == "" && raw[3] == "" {
		return geo.Region{}, domain.ErrNoRegion
	}

	var vals [4]float64
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return geo.Region{}, fmt.Errorf("parse bounds: %w", domain.ErrInvalidRegion)
		}
		vals[i] = f
	}
	bounds, err := geo.NewBounds(vals[0], vals[1], vals[2], vals[3])
	if err != nil {
		return geo.Region{}, err
	}
	return geo.RectRegion(bounds), nil
}

func parsePolygonParam(raw string) ([]geo.Point, error) {
	pairs := strings.Split(raw, "|")
	points := make([]geo.Point, 0, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("polygon point %q: %w", pair, domain.ErrInvalidRegion)
		}
		lat, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("polygon point %q: %w", pair, domain.ErrInvalidRegion)
		}
		lng, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("polygon point %q: %w", pair, domain.ErrInvalidRegion)
		}
		points = append(points, geo.Point{Lat: lat, Lng: lng})
	}
	return points, nil
}

func filtersFromQuery(q url.Values) filter.State {
	values := make(map[string][]string)
	for _, key := range filter.Keys() {
		if vs, ok := q[key]; ok {
			values[key] = vs
		}
	}
	return filter.New(values)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoRegion,
		domain.ErrInvalidRegion,
		domain.ErrInvalidListing,
		domain.ErrNotFound,
		domain.ErrQueryFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type handler struct {
	ports *Ports
	loc   *time.Location
}

// NewHandler returns the API routes.
func NewHandler(ports *Ports) http.Handler {
	h := &handler{ports: ports, loc: time.Local}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /environments", h.environments)
	mux.HandleFunc("GET /categories", h.categories)
	mux.HandleFunc("POST /classify", h.classify)
	mux.HandleFunc("GET /orders", h.orders)
	mux.HandleFunc("POST /orders/plates", h.ordersByPlates)
	mux.HandleFunc("POST /orders/phones", h.ordersByPhones)
	mux.HandleFunc("POST /push", h.push)
	mux.HandleFunc("POST /subscribers", h.subscribers)
	mux.HandleFunc("GET /receipts", h.receipts)
	mux.HandleFunc("POST /scheduled/run", h.scheduledRun)
	mux.HandleFunc("GET /scheduled/history", h.scheduledHistory)
	if ports.MCP != nil {
		mux.Handle("/mcp", ports.MCP)
	}
	return logRequests(mux)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type environmentsResponse struct {
	Available    []string             `json:"available"`
	Environments []domain.Environment `json:"environments"`
}

func (h *handler) environments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, environmentsResponse{
		Available:    h.ports.Registry.AvailableEnvironments(),
		Environments: h.ports.Registry.Environments(),
	})
}

func (h *handler) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ports.Classifier.Categories())
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Matched  bool   `json:"matched"`
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"category,omitempty"`
}

func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c := h.ports.Classifier.Classify(req.Text)
	writeJSON(w, http.StatusOK, classifyResponse{Matched: c.Matched(), Keyword: c.Keyword, Category: c.Category})
}

type ordersResponse struct {
	Count  int            `json:"count"`
	Orders []domain.Order `json:"orders"`
}

func (h *handler) orders(w http.ResponseWriter, r *http.Request) {
	filter, err := queryParams(r).Filter(h.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	h.aggregate(w, r, filter)
}

func (h *handler) ordersByPlates(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Plates) == 0 {
		writeError(w, &domain.ValidationError{Field: "plates", Err: domain.ErrEmptyPlateList})
		return
	}
	filter, err := req.filter(h.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	h.aggregate(w, r, filter)
}

func (h *handler) aggregate(w http.ResponseWriter, r *http.Request, filter domain.OrderFilter) {
	orders, err := h.ports.Orders.Aggregate(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, ordersResponse{Count: len(orders), Orders: orders})
}

type phonesResponse struct {
	Count   int                 `json:"count"`
	Matches []domain.PhoneMatch `json:"matches"`
}

func (h *handler) ordersByPhones(w http.ResponseWriter, r *http.Request) {
	if h.ports.Phones == nil {
		writeError(w, notAvailable("phone lookup"))
		return
	}
	var req phonesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	defaults, items, err := req.parse(h.loc)
	if err != nil {
		writeError(w, err)
		return
	}

	matches, err := h.ports.Phones.Lookup(r.Context(), items, defaults)
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []domain.PhoneMatch{}
	}
	writeJSON(w, http.StatusOK, phonesResponse{Count: len(matches), Matches: matches})
}

func (h *handler) push(w http.ResponseWriter, r *http.Request) {
	if h.ports.Pusher == nil {
		writeError(w, notAvailable("push"))
		return
	}
	dryRun, err := boolParam(r, "dryRun")
	if err != nil {
		writeError(w, err)
		return
	}
	filter, err := queryParams(r).Filter(h.loc)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.ports.Pusher.Push(r.Context(), filter, dryRun)
	if err != nil {
		if result != nil && !domain.IsConfiguration(err) && !domain.IsValidation(err) {
			writeJSON(w, http.StatusBadGateway, result)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) subscribers(w http.ResponseWriter, r *http.Request) {
	if h.ports.Subscribers == nil {
		writeError(w, notAvailable("subscribers"))
		return
	}
	var req subscribersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.ports.Subscribers.Forward(r.Context(), req.batch())
	if err != nil {
		if result != nil && !domain.IsConfiguration(err) && !domain.IsValidation(err) {
			writeJSON(w, http.StatusBadGateway, result)
			return
		}
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if result == nil || !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

type receiptsResponse struct {
	Count    int                   `json:"count"`
	Receipts []domain.GoodsReceipt `json:"receipts"`
}

func (h *handler) receipts(w http.ResponseWriter, r *http.Request) {
	if h.ports.Receipts == nil {
		writeError(w, notAvailable("goods receipts"))
		return
	}
	q, err := receiptParams(r).Query(h.loc)
	if err != nil {
		writeError(w, err)
		return
	}

	receipts, err := h.ports.Receipts.Receipts(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	if receipts == nil {
		receipts = []domain.GoodsReceipt{}
	}
	writeJSON(w, http.StatusOK, receiptsResponse{Count: len(receipts), Receipts: receipts})
}

func (h *handler) scheduledRun(w http.ResponseWriter, r *http.Request) {
	if h.ports.Scheduler == nil {
		writeError(w, notAvailable("scheduler"))
		return
	}
	result, err := h.ports.Scheduler.RunNow(r.Context())
	if result == nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	switch {
	case err != nil:
		status = statusFor(err)
	case !result.Success:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

type historyResponse struct {
	NextRun time.Time           `json:"nextRun"`
	Runs    []domain.TaskResult `json:"runs"`
}

func (h *handler) scheduledHistory(w http.ResponseWriter, r *http.Request) {
	if h.ports.Scheduler == nil {
		writeError(w, notAvailable("scheduler"))
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, &domain.ValidationError{Field: "limit", Err: domain.ErrInvalidInput})
			return
		}
		limit = n
	}

	runs, err := h.ports.Scheduler.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []domain.TaskResult{}
	}
	writeJSON(w, http.StatusOK, historyResponse{NextRun: h.ports.Scheduler.NextRun(), Runs: runs})
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// errNotAvailable marks a route whose port was not wired.
var errNotAvailable = errors.New("not available")

func notAvailable(what string) error {
	return fmt.Errorf("%s: %w", what, errNotAvailable)
}

// statusFor maps an error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err), domain.IsConfiguration(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskRunning):
		return http.StatusConflict
	case errors.Is(err, errNotAvailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encode response: %v", err)
	}
}

// decodeBody reads a JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &domain.ValidationError{Field: "body", Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
	}
	return nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, &domain.ValidationError{Field: name, Err: fmt.Errorf("%w: %q", domain.ErrInvalidInput, s)}
	}
	return b, nil
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps event streams on /mcp working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

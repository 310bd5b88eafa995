package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/ports"
)

// maxBatchSize caps a single ingestion batch.
const maxBatchSize = 500

// ErrIngestUnavailable is returned by a dispatcher that no longer accepts events.
var ErrIngestUnavailable = errors.New("usage ingestion unavailable")

// UsageDispatcher is the interface the handler uses to enqueue events.
type UsageDispatcher interface {
	Enqueue(event ports.UsageEventInput) error
	EnqueueBatch(events []ports.UsageEventInput) error
}

// UsageHandler handles usage ingestion from the automation platform and the
// per-tenant usage summary read by portal users.
type UsageHandler struct {
	dispatcher UsageDispatcher
	service    ports.UsageService
	gate       TenantGate
}

func NewUsageHandler(dispatcher UsageDispatcher, service ports.UsageService, gate TenantGate) *UsageHandler {
	return &UsageHandler{dispatcher: dispatcher, service: service, gate: gate}
}

// Receive handles POST /v1/ingest/usage: enqueues a single event, returns 202.
//
// @Summary      Ingest a single usage event
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        body  body      usageEventRequest  true  "Usage event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/ingest/usage [post]
func (h *UsageHandler) Receive(c echo.Context) error {
	var req usageEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.dispatcher.Enqueue(toUsageInput(req)); err != nil {
		return unavailable(err)
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// ReceiveBatch handles POST /v1/ingest/usage/batch: enqueues a batch of events, returns 202.
//
// @Summary      Ingest a batch of usage events
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        body  body      []usageEventRequest  true  "Array of usage events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/ingest/usage/batch [post]
func (h *UsageHandler) ReceiveBatch(c echo.Context) error {
	var reqs []usageEventRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}
	if len(reqs) > maxBatchSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("batch cannot exceed %d events", maxBatchSize))
	}

	inputs := make([]ports.UsageEventInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("event[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toUsageInput(req))
	}

	if err := h.dispatcher.EnqueueBatch(inputs); err != nil {
		return unavailable(err)
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "events accepted",
		Count:   len(inputs),
	})
}

// Summary returns per-metric usage totals for a tenant. Without from/to the
// current billing month is used.
//
// @Summary      Tenant usage summary
// @Tags         usage
// @Produce      json
// @Security     SessionCookie
// @Param        tenant_id  path      string  true   "Tenant ID"
// @Param        from       query     string  false  "Window start (RFC3339)"
// @Param        to         query     string  false  "Window end, exclusive (RFC3339)"
// @Success      200        {object}  usageSummaryResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /v1/tenants/{tenant_id}/usage [get]
func (h *UsageHandler) Summary(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	from, err := parseTimeParam(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tenantID := c.Param("tenant_id")
	if err := h.gate.RequireTenantAccess(ctx, identity, tenantID); err != nil {
		return err
	}

	summary, err := h.service.Summary(ctx, tenantID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUsageSummaryResponse(summary))
}

func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("%s must be an RFC3339 timestamp", name))
	}
	return t, nil
}

func unavailable(err error) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, ErrIngestUnavailable.Error()).SetInternal(err)
}

// toUsageInput maps the HTTP request to the service DTO. Events without an id
// get one so retries of the same request body are still distinct.
func toUsageInput(r usageEventRequest) ports.UsageEventInput {
	eventID := r.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return ports.UsageEventInput{
		EventID:   eventID,
		TenantID:  r.TenantID,
		Metric:    r.Metric,
		Quantity:  r.Quantity,
		Timestamp: ts,
		Source:    r.Source,
	}
}

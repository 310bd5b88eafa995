package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

func TestUsageHandler_Receive_AssignsEventID(t *testing.T) {
	d := &stubDispatcher{}
	handler := NewUsageHandler(d, &stubUsageService{}, &stubGate{})

	c, rec := newTestContext(http.MethodPost, "/v1/ingest/usage",
		`{"tenant_id":"tenant-a","metric":"workflow_runs","quantity":3}`, nil)
	if err := handler.Receive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(d.single) != 1 {
		t.Fatalf("expected one enqueued event, got %d", len(d.single))
	}
	ev := d.single[0]
	if ev.EventID == "" || ev.Timestamp.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", ev)
	}
	if ev.TenantID != "tenant-a" || ev.Quantity != 3 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestUsageHandler_Receive_KeepsCallerEventID(t *testing.T) {
	d := &stubDispatcher{}
	handler := NewUsageHandler(d, &stubUsageService{}, &stubGate{})

	c, _ := newTestContext(http.MethodPost, "/v1/ingest/usage",
		`{"event_id":"evt-1","tenant_id":"tenant-a","metric":"tasks","quantity":1,"timestamp":"2026-02-10T08:00:00Z"}`, nil)
	if err := handler.Receive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if d.single[0].EventID != "evt-1" {
		t.Fatalf("expected caller event id, got %q", d.single[0].EventID)
	}
}

func TestUsageHandler_Receive_Validation(t *testing.T) {
	d := &stubDispatcher{}
	handler := NewUsageHandler(d, &stubUsageService{}, &stubGate{})

	c, _ := newTestContext(http.MethodPost, "/v1/ingest/usage",
		`{"tenant_id":"tenant-a","metric":"tasks","quantity":0}`, nil)
	if code := httpStatus(handler.Receive(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if len(d.single) != 0 {
		t.Fatalf("invalid events must not be enqueued")
	}
}

func TestUsageHandler_Receive_DispatcherStopped(t *testing.T) {
	handler := NewUsageHandler(&stubDispatcher{err: errors.New("dispatcher stopped")}, &stubUsageService{}, &stubGate{})

	c, _ := newTestContext(http.MethodPost, "/v1/ingest/usage",
		`{"tenant_id":"tenant-a","metric":"tasks","quantity":1}`, nil)
	if code := httpStatus(handler.Receive(c)); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
}

func TestUsageHandler_ReceiveBatch(t *testing.T) {
	d := &stubDispatcher{}
	handler := NewUsageHandler(d, &stubUsageService{}, &stubGate{})

	c, rec := newTestContext(http.MethodPost, "/v1/ingest/usage/batch",
		`[{"tenant_id":"a","metric":"tasks","quantity":1},{"tenant_id":"b","metric":"tasks","quantity":2}]`, nil)
	if err := handler.ReceiveBatch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(d.batches) != 1 || len(d.batches[0]) != 2 {
		t.Fatalf("unexpected batches: %+v", d.batches)
	}
}

func TestUsageHandler_ReceiveBatch_Rejections(t *testing.T) {
	d := &stubDispatcher{}
	handler := NewUsageHandler(d, &stubUsageService{}, &stubGate{})

	c, _ := newTestContext(http.MethodPost, "/v1/ingest/usage/batch", `[]`, nil)
	if code := httpStatus(handler.ReceiveBatch(c)); code != http.StatusBadRequest {
		t.Fatalf("empty batch: expected 400, got %d", code)
	}

	c, _ = newTestContext(http.MethodPost, "/v1/ingest/usage/batch",
		`[{"tenant_id":"a","metric":"tasks","quantity":1},{"tenant_id":"","metric":"tasks","quantity":1}]`, nil)
	err := handler.ReceiveBatch(c)
	if code := httpStatus(err); code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid item: expected 422, got %d", code)
	}
	if !strings.Contains(err.Error(), "event[1]") {
		t.Fatalf("expected the failing index in the message, got %v", err)
	}
	if len(d.batches) != 0 {
		t.Fatalf("a rejected batch must not be enqueued")
	}
}

func TestUsageHandler_Summary(t *testing.T) {
	gate := &stubGate{}
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := &stubUsageService{
		summaryFn: func(ctx context.Context, tenantID string, gotFrom, gotTo time.Time) (*ports.UsageSummary, error) {
			if !gotFrom.Equal(from) || !gotTo.Equal(to) {
				t.Fatalf("unexpected window: %v %v", gotFrom, gotTo)
			}
			return &ports.UsageSummary{
				TenantID: tenantID,
				From:     from,
				To:       to,
				Totals:   []domain.UsageTotal{{Metric: "tasks", Quantity: 42, Events: 7}},
			}, nil
		},
	}
	handler := NewUsageHandler(&stubDispatcher{}, svc, gate)

	c, rec := newTestContext(http.MethodGet,
		"/v1/tenants/tenant-a/usage?from=2026-02-01T00:00:00Z&to=2026-03-01T00:00:00Z", "", clientIdentity)
	c.SetParamNames("tenant_id")
	c.SetParamValues("tenant-a")

	if err := handler.Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"quantity":42`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(gate.calls) != 1 || gate.calls[0] != "access:tenant-a" {
		t.Fatalf("unexpected gate calls: %v", gate.calls)
	}
}

func TestUsageHandler_Summary_BadTimestamp(t *testing.T) {
	handler := NewUsageHandler(&stubDispatcher{}, &stubUsageService{}, &stubGate{})

	c, _ := newTestContext(http.MethodGet, "/v1/tenants/tenant-a/usage?from=yesterday", "", clientIdentity)
	c.SetParamNames("tenant_id")
	c.SetParamValues("tenant-a")

	if code := httpStatus(handler.Summary(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUsageHandler_Summary_GateDenied(t *testing.T) {
	gate := &stubGate{accessErr: domain.Forbidden("tenant scope")}
	handler := NewUsageHandler(&stubDispatcher{}, &stubUsageService{}, gate)

	c, _ := newTestContext(http.MethodGet, "/v1/tenants/tenant-b/usage", "", clientIdentity)
	c.SetParamNames("tenant_id")
	c.SetParamValues("tenant-b")

	if err := handler.Summary(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

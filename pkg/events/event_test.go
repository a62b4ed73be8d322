package events

import (
	"encoding/json"
	"testing"
	"time"
)

type guidelineActivated struct {
	BaseEvent
	Version int `json:"version"`
}

func TestNewBaseEvent(t *testing.T) {
	aggregateID := "sub-123"
	tenantID := "tenant-456"

	before := time.Now().UTC()
	event := NewBaseEvent("underwriting.submission.created", aggregateID, "Submission", tenantID)
	after := time.Now().UTC()

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if event.EventType() != "underwriting.submission.created" {
		t.Errorf("expected event type %q, got %q", "underwriting.submission.created", event.EventType())
	}
	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}
	if event.AggregateType() != "Submission" {
		t.Errorf("expected aggregate type %q, got %q", "Submission", event.AggregateType())
	}
	if event.TenantID() != tenantID {
		t.Errorf("expected tenant ID %q, got %q", tenantID, event.TenantID())
	}
	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestNewBaseEventAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	event := NewBaseEventAt("x", "agg", "Aggregate", "t", at)

	if !event.OccurredAt().Equal(at) {
		t.Errorf("expected occurredAt %v, got %v", at, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewOutboxEntry(t *testing.T) {
	event := guidelineActivated{
		BaseEvent: NewBaseEvent("underwriting.guideline.activated", "gl-789", "UnderwritingGuideline", "tenant-012"),
		Version:   3,
	}

	entry, err := NewOutboxEntry(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ID != event.EventID() {
		t.Errorf("expected outbox ID %v, got %v", event.EventID(), entry.ID)
	}
	if entry.AggregateID != "gl-789" {
		t.Errorf("expected aggregate ID %v, got %v", "gl-789", entry.AggregateID)
	}
	if entry.TenantID != "tenant-012" {
		t.Errorf("expected tenant ID %q, got %q", "tenant-012", entry.TenantID)
	}
	if entry.EventType != "underwriting.guideline.activated" {
		t.Errorf("unexpected event type %q", entry.EventType)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(entry.Payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if parsed["version"] != float64(3) {
		t.Errorf("expected payload version 3, got %v", parsed["version"])
	}
	if entry.CreatedAt != event.OccurredAt() {
		t.Errorf("expected created at %v, got %v", event.OccurredAt(), entry.CreatedAt)
	}
	if entry.PublishedAt != nil {
		t.Error("expected published at to be nil")
	}
}

func TestNewOutboxEntries(t *testing.T) {
	evts := []DomainEvent{
		NewBaseEvent("Event1", "agg", "Aggregate", "t"),
		NewBaseEvent("Event2", "agg", "Aggregate", "t"),
	}

	entries, err := NewOutboxEntries(evts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].EventType != "Event2" {
		t.Errorf("expected order to be preserved, got %q", entries[1].EventType)
	}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}

	collector.Record(NewBaseEvent("Event1", "agg-test", "Aggregate", ""))
	collector.Record(NewBaseEvent("Event2", "agg-test", "Aggregate", ""))

	events := collector.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType() != "Event1" {
		t.Errorf("expected first event type %q, got %q", "Event1", events[0].EventType())
	}
	if events[1].EventType() != "Event2" {
		t.Errorf("expected second event type %q, got %q", "Event2", events[1].EventType())
	}
}

func TestEventCollectorEventsDoesNotClear(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", ""))

	_ = collector.Events()

	if len(collector.Events()) != 1 {
		t.Error("expected Events() to not clear the internal slice")
	}
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg-clear", "Aggregate", ""))
	collector.Record(NewBaseEvent("Event2", "agg-clear", "Aggregate", ""))

	cleared := collector.ClearEvents()

	if len(cleared) != 2 {
		t.Fatalf("expected ClearEvents to return 2 events, got %d", len(cleared))
	}
	if len(collector.Events()) != 0 {
		t.Errorf("expected internal slice to be empty after ClearEvents, got %d events", len(collector.Events()))
	}
}

func TestEventCollectorClearEventsOnEmpty(t *testing.T) {
	collector := &EventCollector{}

	if cleared := collector.ClearEvents(); cleared != nil {
		t.Errorf("expected nil from ClearEvents on empty collector, got %v", cleared)
	}
}

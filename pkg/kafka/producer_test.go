package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	OrderID    string `json:"order_id"`
	TotalCents int64  `json:"total_cents"`
	Sector     string `json:"sector"`
}

func TestNewEvent_Fields(t *testing.T) {
	data := orderPayload{OrderID: "ord-123", TotalCents: 4999, Sector: "norte"}
	event, err := NewEvent("order.created", "ord-123", "order", "inmedt-api", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "order.created", event.EventType)
	assert.Equal(t, "ord-123", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, "inmedt-api", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)

	var got orderPayload
	require.NoError(t, json.Unmarshal(event.Data, &got))
	assert.Equal(t, data, got)
}

func TestNewEvent_UnserializableData(t *testing.T) {
	_, err := NewEvent("order.created", "ord-1", "order", "inmedt-api", make(chan int))
	require.Error(t, err)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("product.updated", "prod-456", "product", "inmedt-api",
		map[string]string{"name": "Cola Tropical 3L"})
	require.NoError(t, err)
	original.CorrelationID = "req-checkout-123"
	original.Metadata["actor"] = "admin"

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, original.EventType, restored.EventType)
	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, original.AggregateType, restored.AggregateType)
	assert.Equal(t, original.Version, restored.Version)
	assert.Equal(t, original.Source, restored.Source)
	assert.Equal(t, original.CorrelationID, restored.CorrelationID)
	assert.Equal(t, original.Metadata, restored.Metadata)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
	assert.WithinDuration(t, original.Timestamp, restored.Timestamp, time.Millisecond)
}

func TestEvent_WithCorrelationID_Chains(t *testing.T) {
	event, err := NewEvent("order.cancelled", "ord-9", "order", "inmedt-api", nil)
	require.NoError(t, err)

	result := event.WithCorrelationID("req-cancel-9")
	assert.Same(t, event, result)
	assert.Equal(t, "req-cancel-9", event.CorrelationID)
}

func TestEvent_WithMetadata_Chains(t *testing.T) {
	event, err := NewEvent("order.status-changed", "ord-9", "order", "inmedt-api", nil)
	require.NoError(t, err)

	result := event.WithMetadata("from", "pendiente").WithMetadata("to", "enviado")
	assert.Same(t, event, result)
	assert.Equal(t, "pendiente", event.Metadata["from"])
	assert.Equal(t, "enviado", event.Metadata["to"])
}

func TestEvent_WithMetadata_InitializesNilMap(t *testing.T) {
	event := &Event{EventID: "evt-1", EventType: "order.created"}
	event.WithMetadata("actor", "importer")

	require.NotNil(t, event.Metadata)
	assert.Equal(t, "importer", event.Metadata["actor"])
}

func TestEvent_UnmarshalData(t *testing.T) {
	payload := orderPayload{OrderID: "ord-77", TotalCents: 125000, Sector: "cumbaya"}
	event, err := NewEvent("order.created", "ord-77", "order", "inmedt-api", payload)
	require.NoError(t, err)

	var got orderPayload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}

func TestEvent_UnmarshalData_InvalidPayload(t *testing.T) {
	event := &Event{Data: json.RawMessage(`not valid json`)}

	var got map[string]string
	require.Error(t, event.UnmarshalData(&got))
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	for _, raw := range [][]byte{[]byte(`{broken json`), {}} {
		_, err := UnmarshalEvent(raw)
		require.Error(t, err)
	}
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"kafka-1:9092", "kafka-2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "inmedt", TopicPrefix)

	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"order", "created", "inmedt.order.created"},
		{"order", "status-changed", "inmedt.order.status-changed"},
		{"order", "cancelled", "inmedt.order.cancelled"},
		{"user", "registered", "inmedt.user.registered"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

func TestNewProducer_DoesNotDialEagerly(t *testing.T) {
	// The writer connects lazily, so construction and Close work without a
	// broker listening.
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokersConfigured(t *testing.T) {
	for _, brokers := range [][]string{nil, {}} {
		err := PingBrokers(t.Context(), brokers)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no brokers configured")
	}
}

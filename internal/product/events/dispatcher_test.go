package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
)

func sampleEvents() (models.DomainEvent, models.DomainEvent) {
	now := time.Date(2025, 4, 4, 4, 4, 4, 0, time.UTC)
	p := models.NewProduct(id.ProductID("p-1"), models.Fields{Name: "Mug", Price: 9.5, Currency: "EUR"}, now)
	created := models.NewProductCreatedPendingVerification(p, now)
	_ = p.TransitionToActive(now)
	done := models.NewProductVerificationCompleted(p, nil, now)
	return created, done
}

func TestBusDeliversInOrderToEveryListener(t *testing.T) {
	first, second := NewRecorder(), NewRecorder()
	bus := NewBus(first)
	bus.Subscribe(second)

	created, done := sampleEvents()
	require.NoError(t, bus.DispatchAll(context.Background(), []models.DomainEvent{created, done}))

	want := []string{models.EventProductCreatedPendingVerification, models.EventProductVerificationCompleted}
	assert.Equal(t, want, first.Names())
	assert.Equal(t, want, second.Names())
}

func TestBusContinuesPastFailingListener(t *testing.T) {
	boom := errors.New("broker down")
	recorder := NewRecorder()
	bus := NewBus(
		ListenerFunc(func(context.Context, models.DomainEvent) error { return boom }),
		recorder,
	)

	created, done := sampleEvents()
	err := bus.DispatchAll(context.Background(), []models.DomainEvent{created, done})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, recorder.Events(), 2)
}

func TestBusWithoutListeners(t *testing.T) {
	created, _ := sampleEvents()
	assert.NoError(t, NewBus().Dispatch(context.Background(), created))
}

func TestRecorderClear(t *testing.T) {
	r := NewRecorder()
	created, _ := sampleEvents()
	require.NoError(t, r.Handle(context.Background(), created))
	r.Clear()
	assert.Empty(t, r.Events())
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogListener(slog.New(slog.NewJSONHandler(&buf, nil)))
	created, _ := sampleEvents()

	require.NoError(t, l.Handle(context.Background(), created))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, models.EventProductCreatedPendingVerification, line["event_type"])
	assert.Equal(t, "p-1", line["product_id"])
}

type capturePublisher struct {
	topic      string
	key, value []byte
	err        error
}

func (c *capturePublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	c.topic, c.key, c.value = topic, key, value
	return c.err
}

func TestKafkaListenerEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	l := NewKafkaListener(pub, "product-events")
	_, done := sampleEvents()

	require.NoError(t, l.Handle(context.Background(), done))
	assert.Equal(t, "product-events", pub.topic)
	assert.Equal(t, "p-1", string(pub.key))

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.value, &env))
	assert.Equal(t, done.EventID(), env.EventID)
	assert.Equal(t, models.EventProductVerificationCompleted, env.EventType)

	var payload struct {
		ProductID string   `json:"product_id"`
		Status    string   `json:"status"`
		Reasons   []string `json:"reasons"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "active", payload.Status)
	assert.Empty(t, payload.Reasons)
}

func TestKafkaListenerPropagatesPublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("not leader")}
	created, _ := sampleEvents()
	err := NewKafkaListener(pub, "t").Handle(context.Background(), created)
	assert.ErrorIs(t, err, pub.err)
}

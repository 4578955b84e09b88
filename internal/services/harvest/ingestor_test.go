package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor/session"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/dedup"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/rabbitmq"
)

type stubConsumer struct {
	handler rabbitmq.Handler
}

func (s *stubConsumer) SetHandler(h rabbitmq.Handler) { s.handler = h }

func (s *stubConsumer) ConsumeMessage(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func newIngestor(t *testing.T) (*Ingestor, *advisor.Service) {
	t.Helper()
	svc := advisor.NewService(advisor.Config{}, nil, session.NewStore(time.Hour))
	return NewIngestor(&stubConsumer{}, svc, dedup.New(time.Minute, 100), nil), svc
}

func TestHandlePayloadUpdatesSession(t *testing.T) {
	in, svc := newIngestor(t)

	payload := []byte(`{"session_id":"farm-1","crop":"قمح_صلب","actual_yield":2000,"area_sqm":10000,"actual_water":1000}`)
	require.NoError(t, in.HandlePayload(context.Background(), "harvest/report/ignored", payload))

	a, ok := svc.Historical("farm-1")
	require.True(t, ok)
	assert.Equal(t, "قمح_صلب", a.PreviousCrop)
	assert.InDelta(t, 2.0, a.WaterEfficiencyRatio, 1e-9)

	_, ok = svc.Historical(session.DefaultID)
	assert.False(t, ok)
}

func TestHandlePayloadSessionFromTopic(t *testing.T) {
	in, svc := newIngestor(t)

	payload := []byte(`{"crop":"شعير","actual_yield":3000,"area_sqm":5000,"actual_water":2000}`)
	require.NoError(t, in.HandlePayload(context.Background(), "harvest/report/farm-9", payload))

	a, ok := svc.Historical("farm-9")
	require.True(t, ok)
	assert.InDelta(t, 3.0, a.WaterEfficiencyRatio, 1e-9)
}

func TestHandlePayloadRejectsInvalid(t *testing.T) {
	in, svc := newIngestor(t)

	err := in.HandlePayload(context.Background(), "harvest/report/x", []byte(`{"crop":"شعير","actual_yield":3000,"area_sqm":5000,"actual_water":0}`))
	assert.ErrorIs(t, err, advisor.ErrValidation)

	err = in.HandlePayload(context.Background(), "harvest/report/x", []byte(`not json`))
	assert.Error(t, err)

	_, ok := svc.Historical("x")
	assert.False(t, ok)
}

func TestHandlePayloadDropsDuplicates(t *testing.T) {
	in, svc := newIngestor(t)
	ctx := context.Background()

	first := []byte(`{"session_id":"s","crop":"شعير","actual_yield":2000,"area_sqm":10000,"actual_water":1000}`)
	second := []byte(`{"session_id":"s","crop":"شعير","actual_yield":4000,"area_sqm":10000,"actual_water":1000}`)

	require.NoError(t, in.HandlePayload(ctx, "harvest/report/s", first))
	require.NoError(t, in.HandlePayload(ctx, "harvest/report/s", second))
	require.NoError(t, in.HandlePayload(ctx, "harvest/report/s", first))

	a, _ := svc.Historical("s")
	assert.InDelta(t, 4.0, a.WaterEfficiencyRatio, 1e-9, "redelivered first report must not overwrite the newer one")
}

func TestStartReturnsOnCancel(t *testing.T) {
	in, _ := newIngestor(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- in.Start(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestSessionFromTopic(t *testing.T) {
	cases := map[string]string{
		"harvest/report/farm-1":   "farm-1",
		"harvest/report/a/b":      "a/b",
		"harvest/report":          "",
		"other/report/farm-1":     "",
		"/harvest/report/farm-2/": "farm-2",
	}
	for topic, want := range cases {
		assert.Equal(t, want, SessionFromTopic(topic), topic)
	}
}

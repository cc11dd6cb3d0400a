package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
)

func TestEventBus_SubscribePublishUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus := services.NewEventBus()
	ctx := context.Background()
	var calls []string

	unsubscribeA := bus.Subscribe(events.RecordCreated, func(_ context.Context, payload interface{}) error {
		calls = append(calls, "a:"+payload.(string))
		return nil
	})
	bus.Subscribe(events.RecordCreated, func(_ context.Context, payload interface{}) error {
		calls = append(calls, "b:"+payload.(string))
		return nil
	})

	require.NoError(t, bus.Publish(ctx, events.RecordCreated, "1"))
	require.NoError(t, bus.Publish(ctx, events.RecordDeleted, "ignored"))
	unsubscribeA()
	require.NoError(t, bus.Publish(ctx, events.RecordCreated, "2"))
	assert.Equal(t, []string{"a:1", "b:1", "b:2"}, calls)

	boom := errors.New("boom")
	bus.Subscribe(events.FieldDeleted, func(context.Context, interface{}) error { return boom })
	err := bus.Publish(ctx, events.FieldDeleted, nil)
	assert.ErrorIs(t, err, boom)

	bus.Clear()
	assert.NoError(t, bus.Publish(ctx, events.FieldDeleted, nil))
}

func TestEventBus_ServicesPublishAfterCommit(t *testing.T) {
	fx := newFixture(t)
	var got []services.RecordEventPayload
	fx.sm.EventBus.Subscribe(events.RecordCreated, func(_ context.Context, payload interface{}) error {
		got = append(got, payload.(services.RecordEventPayload))
		return nil
	})
	failing := fx.sm.EventBus.Subscribe(events.RecordCreated, func(context.Context, interface{}) error {
		return errors.New("subscriber down")
	})
	defer failing()

	m := fx.module(t, "Deals")
	fx.field(t, m.ID, "title", fieldtypes.Text, required)

	_, err := fx.sm.Records.Create(fx.ctx, fx.owner, m.ID, models.RecordData{}, "")
	require.Error(t, err)
	assert.Empty(t, got)

	// A failing handler does not undo a committed record
	rec := fx.record(t, m.ID, models.RecordData{"title": "Won deal"})
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].Record.ID)
	assert.Equal(t, m.ID, got[0].ModuleID)

	_, err = fx.sm.Records.Get(fx.ctx, fx.owner, m.ID, rec.ID)
	require.NoError(t, err)
}

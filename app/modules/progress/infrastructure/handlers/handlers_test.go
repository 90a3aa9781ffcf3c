package progresshandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	progressevents "github.com/Black-And-White-Club/progress-engine/app/events/progress"
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressmetrics "github.com/Black-And-White-Club/progress-engine/app/observability/metrics/progress"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestHandlers(svc *FakeProgressService) Handlers {
	return NewProgressHandlers(svc, slog.Default(), noop.NewTracerProvider().Tracer("test"), progressmetrics.NewNoop())
}

func TestHandleMasteryAchieved(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*FakeProgressService)
		payload     *progressevents.MasteryAchievedPayloadV1
		wantResults int
		wantTrace   []string
		wantErr     bool
	}{
		{
			name:        "hardcore mastery purges",
			setup:       func(*FakeProgressService) {},
			payload:     &progressevents.MasteryAchievedPayloadV1{GameID: 42, UserID: 7, Hardcore: true},
			wantResults: 1,
			wantTrace:   []string{"ExpireTopAchievers"},
		},
		{
			name:      "softcore mastery is ignored",
			setup:     func(*FakeProgressService) {},
			payload:   &progressevents.MasteryAchievedPayloadV1{GameID: 42, UserID: 7},
			wantTrace: []string{},
		},
		{
			name: "purge failure is retried by the router",
			setup: func(f *FakeProgressService) {
				f.ExpireTopAchieversFunc = func(context.Context, progressdomain.GameID) error {
					return errors.New("cache down")
				}
			},
			payload:   &progressevents.MasteryAchievedPayloadV1{GameID: 42, UserID: 7, Hardcore: true},
			wantTrace: []string{"ExpireTopAchievers"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeProgressService()
			tt.setup(svc)

			results, err := newTestHandlers(svc).HandleMasteryAchieved(context.Background(), tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, results, tt.wantResults)
			assert.Equal(t, tt.wantTrace, svc.Trace())
		})
	}
}

func TestHandleMasteryAchievedResult(t *testing.T) {
	var purged progressdomain.GameID
	svc := NewFakeProgressService()
	svc.ExpireTopAchieversFunc = func(_ context.Context, gameID progressdomain.GameID) error {
		purged = gameID
		return nil
	}

	results, err := newTestHandlers(svc).HandleMasteryAchieved(context.Background(),
		&progressevents.MasteryAchievedPayloadV1{GameID: 42, UserID: 7, Hardcore: true})
	assert.NoError(t, err)
	assert.Equal(t, progressdomain.GameID(42), purged)
	if assert.Len(t, results, 1) {
		assert.Equal(t, progressevents.TopAchieversExpiredV1, results[0].Topic)
		assert.Equal(t, &progressevents.TopAchieversExpiredPayloadV1{GameID: 42, Reason: "mastery"}, results[0].Payload)
	}
}

func TestHandleAchievementFlagChanged(t *testing.T) {
	tests := []struct {
		name      string
		payload   *progressevents.AchievementFlagChangedPayloadV1
		wantPurge bool
	}{
		{name: "promoted to official", payload: &progressevents.AchievementFlagChangedPayloadV1{AchievementID: 1, GameID: 42, OldFlags: 5, NewFlags: 3}, wantPurge: true},
		{name: "demoted to unofficial", payload: &progressevents.AchievementFlagChangedPayloadV1{AchievementID: 1, GameID: 42, OldFlags: 3, NewFlags: 5}, wantPurge: true},
		{name: "unchanged flags", payload: &progressevents.AchievementFlagChangedPayloadV1{AchievementID: 1, GameID: 42, OldFlags: 3, NewFlags: 3}},
		{name: "outside the official set", payload: &progressevents.AchievementFlagChangedPayloadV1{AchievementID: 1, GameID: 42, OldFlags: 5, NewFlags: 0}},
		{name: "missing game", payload: &progressevents.AchievementFlagChangedPayloadV1{AchievementID: 1, OldFlags: 5, NewFlags: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeProgressService()
			results, err := newTestHandlers(svc).HandleAchievementFlagChanged(context.Background(), tt.payload)
			assert.NoError(t, err)
			if tt.wantPurge {
				assert.Equal(t, []string{"ExpireTopAchievers"}, svc.Trace())
				assert.Len(t, results, 1)
			} else {
				assert.Empty(t, svc.Trace())
				assert.Empty(t, results)
			}
		})
	}
}

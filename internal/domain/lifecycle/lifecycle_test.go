package lifecycle

import (
	"strings"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestOrdering(t *testing.T) {
	testCases := []struct {
		status   model.OrderStatus
		ordering int
		terminal bool
		abnormal bool
	}{
		{model.OrderStatusPending, 1, false, false},
		{model.OrderStatusCreated, 1, false, false},
		{model.OrderStatusConfirmed, 2, false, false},
		{model.OrderStatusProcessing, 3, false, false},
		{model.OrderStatusPendingPickup, 3, false, false},
		{model.OrderStatusReadyPickup, 4, false, false},
		{model.OrderStatusReady, 4, false, false},
		{model.OrderStatusCompleted, 5, true, false},
		{model.OrderStatusCancelled, -1, true, true},
		{model.OrderStatusRejected, -2, true, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			require.Equal(t, tc.ordering, Ordering(tc.status))
			require.Equal(t, tc.terminal, IsTerminal(tc.status))
			require.Equal(t, tc.abnormal, IsAbnormal(tc.status))
		})
	}
}

func TestNormalizeUnknownFallsBackToPending(t *testing.T) {
	status, ok := Normalize("ON_HOLD")
	require.False(t, ok)
	require.Equal(t, model.OrderStatusPending, status)
	require.Equal(t, 1, Ordering("ON_HOLD"))
	require.False(t, IsTerminal("ON_HOLD"))

	status, ok = Normalize(" ready_pickup ")
	require.True(t, ok)
	require.Equal(t, model.OrderStatusReadyPickup, status)
}

func TestDescribeSteps(t *testing.T) {
	l := New(nil)
	d := l.Describe(model.OrderRecord{ID: "A1", Status: model.OrderStatusProcessing}, time.Now())

	require.False(t, d.Abnormal)
	require.Nil(t, d.AbnormalView)
	require.Len(t, d.Steps, 5)
	require.Equal(t, StepCompleted, d.Steps[0].State)
	require.Equal(t, StepCompleted, d.Steps[1].State)
	require.Equal(t, StepCurrent, d.Steps[2].State)
	require.Equal(t, StepPending, d.Steps[3].State)
	require.Equal(t, StepPending, d.Steps[4].State)
}

func TestDescribeCompletedHasNoPendingStep(t *testing.T) {
	d := New(nil).Describe(model.OrderRecord{ID: "A1", Status: model.OrderStatusCompleted}, time.Now())
	require.True(t, d.Terminal)
	for _, s := range d.Steps[:4] {
		require.Equal(t, StepCompleted, s.State)
	}
	require.Equal(t, StepCurrent, d.Steps[4].State)
}

func TestDescribeAbnormal(t *testing.T) {
	l := New(nil)

	cancelled := l.Describe(model.OrderRecord{ID: "A1", Status: model.OrderStatusCancelled, PickupCode: "1234"}, time.Now())
	require.True(t, cancelled.Abnormal)
	require.Empty(t, cancelled.Steps)
	require.NotNil(t, cancelled.AbnormalView)
	require.Equal(t, "Order cancelled", cancelled.AbnormalView.Title)
	require.Empty(t, cancelled.PickupCode)
	require.Empty(t, cancelled.RejectionReason)

	rejected := l.Describe(model.OrderRecord{ID: "A2", Status: model.OrderStatusRejected}, time.Now())
	require.True(t, rejected.Abnormal)
	require.Equal(t, DefaultCatalog().DefaultRejectionReason, rejected.RejectionReason)

	withReason := l.Describe(model.OrderRecord{ID: "A3", Status: model.OrderStatusRejected, RejectionReason: "out of stock"}, time.Now())
	require.Equal(t, "out of stock", withReason.RejectionReason)
}

func TestDescribePickupCodeOnlyWhenReady(t *testing.T) {
	l := New(nil)
	for _, status := range []model.OrderStatus{model.OrderStatusReadyPickup, model.OrderStatusReady} {
		d := l.Describe(model.OrderRecord{ID: "A1", Status: status, PickupCode: "4821"}, time.Now())
		require.Equal(t, "4821", d.PickupCode, status)
	}
	for _, status := range []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusCompleted} {
		d := l.Describe(model.OrderRecord{ID: "A1", Status: status, PickupCode: "4821"}, time.Now())
		require.Empty(t, d.PickupCode, status)
	}
}

func TestDescribeEstimate(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	eta := now.Add(15 * time.Minute)
	l := New(nil)

	for _, status := range []model.OrderStatus{model.OrderStatusCreated, model.OrderStatusConfirmed, model.OrderStatusProcessing} {
		d := l.Describe(model.OrderRecord{ID: "A1", Status: status, EstimatedReadyAt: &eta}, now)
		require.True(t, d.ShowEstimate, status)
		require.Equal(t, 15*time.Minute, d.EstimatedWait)
	}

	for _, status := range []model.OrderStatus{model.OrderStatusPending, model.OrderStatusPendingPickup, model.OrderStatusReadyPickup} {
		d := l.Describe(model.OrderRecord{ID: "A1", Status: status, EstimatedReadyAt: &eta}, now)
		require.False(t, d.ShowEstimate, status)
		require.Nil(t, d.EstimatedReadyAt)
	}

	past := now.Add(-time.Minute)
	d := l.Describe(model.OrderRecord{ID: "A1", Status: model.OrderStatusCreated, EstimatedReadyAt: &past}, now)
	require.Zero(t, d.EstimatedWait)
}

func TestDescribeUnknownStatus(t *testing.T) {
	d := New(nil).Describe(model.OrderRecord{ID: "A1", Status: "MYSTERY"}, time.Now())
	require.False(t, d.Recognized)
	require.Equal(t, model.OrderStatus("MYSTERY"), d.RawStatus)
	require.Equal(t, model.OrderStatusPending, d.Status)
	require.Equal(t, StepCurrent, d.Steps[0].State)
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(`
default_rejection_reason: nope
steps:
  - ordering: 2
    key: b
    label: B
  - ordering: 1
    key: a
    label: A
`))
	require.NoError(t, err)
	require.Equal(t, "a", c.Steps[0].Key)

	d := New(c).Describe(model.OrderRecord{Status: model.OrderStatusCancelled}, time.Now())
	require.Equal(t, "CANCELLED", d.AbnormalView.Title)

	_, err = LoadCatalog(strings.NewReader("steps: []"))
	require.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = LoadCatalog(strings.NewReader("steps:\n  - ordering: 9\n    key: x\n"))
	require.ErrorIs(t, err, ErrInvalidCatalog)
}

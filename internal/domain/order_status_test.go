package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var whitelist = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusApproved, StatusCancelled},
	StatusApproved:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func TestCanTransition_MatchesWhitelistForEveryPair(t *testing.T) {
	engine := NewStatusEngine(nil, zap.NewNop())

	for current, allowed := range whitelist {
		for _, target := range AllOrderStatuses {
			expected := false
			for _, a := range allowed {
				if a == target {
					expected = true
				}
			}

			ok, err := engine.CanTransition(current, target)
			require.NoError(t, err)
			assert.Equal(t, expected, ok, "%s -> %s", current, target)
		}
	}
}

func TestCanTransition_SelfTransitionsAreIllegal(t *testing.T) {
	engine := NewStatusEngine(nil, zap.NewNop())

	for current := range whitelist {
		ok, err := engine.CanTransition(current, current)
		require.NoError(t, err)
		assert.False(t, ok, current)
	}
}

func TestCanTransition_UnregisteredStatuses(t *testing.T) {
	engine := NewStatusEngine(nil, zap.NewNop())

	for _, status := range []OrderStatus{StatusDraft, StatusCompleted, OrderStatus("bogus")} {
		ok, err := engine.CanTransition(status, StatusPending)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, ErrUnknownStatus), status)
		assert.False(t, errors.Is(err, ErrInvalidTransition))

		_, err = engine.AvailableTransitions(status)
		assert.True(t, errors.Is(err, ErrUnknownStatus))
	}
}

func TestAvailableTransitions(t *testing.T) {
	engine := NewStatusEngine(nil, zap.NewNop())

	shipped, err := engine.AvailableTransitions(StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, []OrderStatus{StatusDelivered}, shipped)

	delivered, err := engine.AvailableTransitions(StatusDelivered)
	require.NoError(t, err)
	assert.Empty(t, delivered)

	cancelled, err := engine.AvailableTransitions(StatusCancelled)
	require.NoError(t, err)
	assert.Empty(t, cancelled)
}

func TestAvailableTransitions_ReturnsCopy(t *testing.T) {
	engine := NewStatusEngine(nil, zap.NewNop())

	first, err := engine.AvailableTransitions(StatusPending)
	require.NoError(t, err)
	first[0] = StatusDelivered

	second, err := engine.AvailableTransitions(StatusPending)
	require.NoError(t, err)
	assert.Equal(t, []OrderStatus{StatusApproved, StatusCancelled}, second)
}

func TestApplyTransition_EndToEnd(t *testing.T) {
	var changes []StatusChange
	hook := func(ctx context.Context, change StatusChange) error {
		changes = append(changes, change)
		return nil
	}
	engine := NewStatusEngine(hook, zap.NewNop())

	err := engine.ApplyTransition(context.Background(), "order-1", StatusPending, StatusApproved)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "order-1", changes[0].OrderID)
	assert.Equal(t, StatusPending, changes[0].From)
	assert.Equal(t, StatusApproved, changes[0].To)
	assert.NotEmpty(t, changes[0].Note)

	err = engine.ApplyTransition(context.Background(), "order-1", StatusApproved, StatusDelivered)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StatusApproved, te.Current)
	assert.Equal(t, StatusDelivered, te.Target)
	assert.Equal(t, []OrderStatus{StatusInProgress, StatusCancelled}, te.Allowed)
	assert.Contains(t, err.Error(), "in_progress, cancelled")

	assert.Len(t, changes, 1, "hook must not fire for rejected transitions")
}

func TestApplyTransition_TerminalStatusMessage(t *testing.T) {
	engine := NewStatusEngine(nil, zap.NewNop())

	err := engine.ApplyTransition(context.Background(), "order-1", StatusDelivered, StatusCompleted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available transitions: none")
}

func TestApplyTransition_HookFailureDoesNotBlock(t *testing.T) {
	calls := 0
	failing := func(ctx context.Context, change StatusChange) error {
		calls++
		return errors.New("audit sink down")
	}
	engine := NewStatusEngine(failing, zap.NewNop())

	err := engine.ApplyTransition(context.Background(), "order-2", StatusInProgress, StatusShipped)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestApplyTransition_HookPanicIsContained(t *testing.T) {
	engine := NewStatusEngine(func(ctx context.Context, change StatusChange) error {
		panic("boom")
	}, zap.NewNop())

	assert.NotPanics(t, func() {
		err := engine.ApplyTransition(context.Background(), "order-3", StatusShipped, StatusDelivered)
		assert.NoError(t, err)
	})
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseOrderStatus("teleported")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}

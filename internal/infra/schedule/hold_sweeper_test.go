package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentops/internal/app/dto"
	"rentops/internal/app/policies"
)

func TestHoldSweeper_RunsAsSystem(t *testing.T) {
	var seen policies.Principal
	s := HoldSweeper{Sweep: func(ctx context.Context) (dto.BulkResult, error) {
		seen, _ = policies.PrincipalFromContext(ctx)
		return dto.BulkResult{SuccessCount: 2}, nil
	}}

	res := s.RunOnce(context.Background())
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, policies.RoleSystem, seen.Role)
}

func TestHoldSweeper_StopsWithContext(t *testing.T) {
	calls := make(chan struct{}, 8)
	s := HoldSweeper{Interval: 5 * time.Millisecond, Sweep: func(ctx context.Context) (dto.BulkResult, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return dto.BulkResult{}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("sweep never ran")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestHoldSweeper_DisabledWithoutInterval(t *testing.T) {
	assert.NoError(t, HoldSweeper{}.Run(context.Background()))
}

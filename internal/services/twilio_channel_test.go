package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustedgroup/enrollment-service/internal/utils"
)

func TestBoundedCallMapsDeadlineToChannelTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	block := make(chan struct{})
	defer close(block)

	err := runBounded(ctx, func() error {
		<-block
		return nil
	})
	require.ErrorIs(t, err, utils.ErrChannelTimeout)
}

func TestBoundedCallPassesCancellationThroughUnmapped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)

	err := runBounded(ctx, func() error {
		<-block
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, utils.ErrChannelTimeout)
}

func TestBoundedCallReturnsTheCallResultWhenInTime(t *testing.T) {
	require.NoError(t, runBounded(context.Background(), func() error { return nil }))

	callErr := errors.New("carrier rejected message")
	err := runBounded(context.Background(), func() error { return callErr })
	require.ErrorIs(t, err, callErr)
}

package data

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// fakeMarketAPI scripts kline and quote responses per call.
type fakeMarketAPI struct {
	bars      []types.Bar
	klinesErr error

	askPrice    float64
	askFailures int
	askCalls    int
}

func (f *fakeMarketAPI) Klines(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.Bar, error) {
	if f.klinesErr != nil {
		return nil, f.klinesErr
	}

	return f.bars, nil
}

func (f *fakeMarketAPI) BestAsk(ctx context.Context, symbol string) (float64, error) {
	f.askCalls++
	if f.askCalls <= f.askFailures {
		return 0, fmt.Errorf("exchange unreachable")
	}

	return f.askPrice, nil
}

func TestLiveHandlerUpdateBars(t *testing.T) {
	queue := events.NewQueue()
	api := &fakeMarketAPI{bars: testSeries("BTCUSDT", 50, 52), askPrice: 52.5}
	handler := NewLiveHandler(context.Background(), queue, api, []string{"BTCUSDT"}, types.Interval1m, 0, logger.NewNopLogger())

	require.NoError(t, handler.UpdateBars())
	assert.Equal(t, 1, queue.Len())

	event, _ := queue.Pop()
	assert.Equal(t, types.EventTypeMarket, event.Type())

	price, err := handler.CurrentPrice("BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 52.5, price, 1e-9)

	bar, err := handler.LatestBar("BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 52, bar.Close, 1e-9)

	// A live feed never exhausts.
	assert.True(t, handler.Continue())
}

func TestLiveHandlerUpdateBarsFetchFailure(t *testing.T) {
	queue := events.NewQueue()
	api := &fakeMarketAPI{klinesErr: fmt.Errorf("exchange unreachable")}
	handler := NewLiveHandler(context.Background(), queue, api, []string{"BTCUSDT"}, types.Interval1m, 0, logger.NewNopLogger())

	err := handler.UpdateBars()
	assert.True(t, errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	assert.Zero(t, queue.Len())
}

func TestLiveHandlerPriceRetrySucceeds(t *testing.T) {
	api := &fakeMarketAPI{askPrice: 50, askFailures: 2}
	handler := NewLiveHandler(context.Background(), events.NewQueue(), api, []string{"BTCUSDT"}, types.Interval1m, 0, logger.NewNopLogger())

	price, err := handler.CurrentPrice("BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 50, price, 1e-9)
	assert.Equal(t, 3, api.askCalls)
}

func TestLiveHandlerPriceUnavailableAfterRetries(t *testing.T) {
	api := &fakeMarketAPI{askPrice: 50, askFailures: 10}
	handler := NewLiveHandler(context.Background(), events.NewQueue(), api, []string{"BTCUSDT"}, types.Interval1m, 0, logger.NewNopLogger())

	_, err := handler.CurrentPrice("BTCUSDT")
	assert.True(t, errors.HasCode(err, errors.ErrCodePriceUnavailable))
	// The retry loop is bounded.
	assert.Equal(t, priceFetchRetries, api.askCalls)
}

func TestLiveHandlerNoBarsYet(t *testing.T) {
	api := &fakeMarketAPI{}
	handler := NewLiveHandler(context.Background(), events.NewQueue(), api, []string{"BTCUSDT"}, types.Interval1m, 0, logger.NewNopLogger())

	_, err := handler.LatestBar("BTCUSDT")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoBarData))

	_, err = handler.LatestBar("DOGEUSDT")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSymbolNotFound))
}

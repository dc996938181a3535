package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

func testSeries(symbol string, closes ...float64) []types.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, 0, len(closes))

	for i, c := range closes {
		bars = append(bars, types.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Symbol: symbol,
			Open:   c - 1,
			High:   c + 1,
			Low:    c - 2,
			Close:  c,
			Volume: 100,
		})
	}

	return bars
}

type HistoricHandlerTestSuite struct {
	suite.Suite
	queue   *events.Queue
	handler *HistoricHandler
}

func TestHistoricHandlerSuite(t *testing.T) {
	suite.Run(t, new(HistoricHandlerTestSuite))
}

func (suite *HistoricHandlerTestSuite) SetupTest() {
	suite.queue = events.NewQueue()

	handler, err := NewHistoricHandler(suite.queue, []string{"BTCUSDT"}, map[string][]types.Bar{
		"BTCUSDT": testSeries("BTCUSDT", 50, 52, 51),
	})
	suite.Require().NoError(err)
	suite.handler = handler
}

func (suite *HistoricHandlerTestSuite) TestMissingSymbolRejected() {
	_, err := NewHistoricHandler(suite.queue, []string{"ETHUSDT"}, map[string][]types.Bar{})
	suite.True(errors.HasCode(err, errors.ErrCodeSymbolNotFound))
}

func (suite *HistoricHandlerTestSuite) TestNoLookaheadBeforeFirstUpdate() {
	// Until the first UpdateBars, no bar has been replayed and queries fail.
	_, err := suite.handler.LatestBar("BTCUSDT")
	suite.True(errors.HasCode(err, errors.ErrCodeNoBarData))

	_, err = suite.handler.CurrentPrice("BTCUSDT")
	suite.True(errors.HasCode(err, errors.ErrCodeNoBarData))
}

func (suite *HistoricHandlerTestSuite) TestReplayOneBarPerUpdate() {
	suite.Require().NoError(suite.handler.UpdateBars())

	// Exactly one MarketEvent per update.
	suite.Equal(1, suite.queue.Len())
	event, _ := suite.queue.Pop()
	suite.Equal(types.EventTypeMarket, event.Type())

	price, err := suite.handler.CurrentPrice("BTCUSDT")
	suite.Require().NoError(err)
	suite.InDelta(50, price, 1e-9)

	// Only the replayed prefix is visible.
	bars, err := suite.handler.LatestBars("BTCUSDT", 10)
	suite.Require().NoError(err)
	suite.Len(bars, 1)

	suite.Require().NoError(suite.handler.UpdateBars())

	price, err = suite.handler.CurrentPrice("BTCUSDT")
	suite.Require().NoError(err)
	suite.InDelta(52, price, 1e-9)

	values, err := suite.handler.LatestBarsValues("BTCUSDT", types.BarFieldClose, 2)
	suite.Require().NoError(err)
	suite.Equal([]float64{50, 52}, values)
}

func (suite *HistoricHandlerTestSuite) TestExhaustionStopsBacktest() {
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.handler.UpdateBars())
		suite.True(suite.handler.Continue())
	}

	// The fourth update finds no bar left and drops the continuation flag.
	suite.Require().NoError(suite.handler.UpdateBars())
	suite.False(suite.handler.Continue())

	// The latest bar stays queryable after exhaustion.
	barTime, err := suite.handler.LatestBarTime("BTCUSDT")
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), barTime)
}

func (suite *HistoricHandlerTestSuite) TestUnknownSymbolQueries() {
	suite.Require().NoError(suite.handler.UpdateBars())

	_, err := suite.handler.LatestBar("DOGEUSDT")
	suite.True(errors.HasCode(err, errors.ErrCodeSymbolNotFound))
}

func TestHistoricHandlerMultiSymbolExhaustion(t *testing.T) {
	queue := events.NewQueue()

	handler, err := NewHistoricHandler(queue, []string{"BTCUSDT", "ETHUSDT"}, map[string][]types.Bar{
		"BTCUSDT": testSeries("BTCUSDT", 50, 52, 51),
		"ETHUSDT": testSeries("ETHUSDT", 30, 31),
	})
	require.NoError(t, err)

	require.NoError(t, handler.UpdateBars())
	require.NoError(t, handler.UpdateBars())
	assert.True(t, handler.Continue())

	// The shortest series ends the whole backtest.
	require.NoError(t, handler.UpdateBars())
	assert.False(t, handler.Continue())
}

package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

func TestTradeBookRoundTrip(t *testing.T) {
	book := NewTradeBook()
	openDate := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	opened, err := book.Open("BTCUSDT", types.DirectionLong, 50, 500, openDate, 0.375, map[string]float64{"entry_price": 50})
	require.NoError(t, err)
	assert.True(t, opened.IsOpen)
	assert.NotEmpty(t, opened.ID)
	assert.Equal(t, 1, book.OpenCount())

	current, exists := book.OpenTrade("BTCUSDT")
	require.True(t, exists)
	assert.Equal(t, opened.ID, current.ID)

	closed, err := book.Close("BTCUSDT", 60, 600, openDate.Add(time.Hour), 0.45)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen)
	assert.Equal(t, opened.ID, closed.ID)
	assert.InDelta(t, 0.2, closed.Return(), 1e-9)
	assert.Equal(t, 0, book.OpenCount())

	require.Len(t, book.Closed(), 1)

	_, exists = book.OpenTrade("BTCUSDT")
	assert.False(t, exists)
}

func TestTradeBookRejectsDoubleOpen(t *testing.T) {
	book := NewTradeBook()
	openDate := time.Now()

	_, err := book.Open("BTCUSDT", types.DirectionLong, 50, 500, openDate, 0, nil)
	require.NoError(t, err)

	_, err = book.Open("BTCUSDT", types.DirectionShort, 55, 550, openDate, 0, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTradeAlreadyOpen))
}

func TestTradeBookCloseWithoutOpenIsFatal(t *testing.T) {
	book := NewTradeBook()

	_, err := book.Close("BTCUSDT", 60, 600, time.Now(), 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoOpenTrade))
}

func TestTradeBookSymbolsAreIndependent(t *testing.T) {
	book := NewTradeBook()
	now := time.Now()

	_, err := book.Open("BTCUSDT", types.DirectionLong, 50, 500, now, 0, nil)
	require.NoError(t, err)

	_, err = book.Open("ETHUSDT", types.DirectionShort, 30, 300, now, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, book.OpenCount())

	_, err = book.Close("ETHUSDT", 25, 250, now.Add(time.Minute), 0)
	require.NoError(t, err)

	_, stillOpen := book.OpenTrade("BTCUSDT")
	assert.True(t, stillOpen)
}

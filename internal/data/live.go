package data

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

const (
	// DefaultBarWindow is how many recent bars a live handler keeps per
	// symbol.
	DefaultBarWindow = 500
	// priceFetchRetries bounds the retry loop on a live quote fetch.
	priceFetchRetries = 3
)

// MarketAPI is the narrow slice of an exchange's market data API the live
// handler needs. It exists so tests can substitute a fake exchange.
type MarketAPI interface {
	// Klines returns the most recent closed bars for the symbol, oldest
	// first.
	Klines(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.Bar, error)
	// BestAsk returns the current best ask quote for the symbol.
	BestAsk(ctx context.Context, symbol string) (float64, error)
}

// LiveHandler polls an exchange for recent bars each heartbeat and prices at
// the real-time best ask. It satisfies the same Handler interface as the
// historical replay so the rest of the engine cannot tell them apart.
type LiveHandler struct {
	ctx     context.Context
	queue   *events.Queue
	api     MarketAPI
	log     *logger.Logger
	symbols []string

	interval types.Interval
	window   int

	latest map[string][]types.Bar
}

// NewLiveHandler creates a live polling handler. The context bounds every
// network call the handler makes; a live run is stopped by cancelling it.
func NewLiveHandler(ctx context.Context, queue *events.Queue, api MarketAPI, symbols []string, interval types.Interval, window int, log *logger.Logger) *LiveHandler {
	if window <= 0 {
		window = DefaultBarWindow
	}

	latest := make(map[string][]types.Bar, len(symbols))
	for _, symbol := range symbols {
		latest[symbol] = nil
	}

	return &LiveHandler{
		ctx:      ctx,
		queue:    queue,
		api:      api,
		log:      log,
		symbols:  symbols,
		interval: interval,
		window:   window,
		latest:   latest,
	}
}

// UpdateBars refreshes the recent-bar window for every symbol and enqueues
// one MarketEvent. A fetch failure is fatal for the tick; the engine decides
// whether to abort.
func (h *LiveHandler) UpdateBars() error {
	for _, symbol := range h.symbols {
		bars, err := h.api.Klines(h.ctx, symbol, h.interval, h.window)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch bars for %s", symbol)
		}

		h.latest[symbol] = bars
	}

	h.queue.Push(types.NewMarketEvent())

	return nil
}

// Continue implements Handler. A live feed never exhausts.
func (h *LiveHandler) Continue() bool {
	return true
}

// Symbols implements Handler.
func (h *LiveHandler) Symbols() []string {
	return h.symbols
}

// LatestBar implements Handler.
func (h *LiveHandler) LatestBar(symbol string) (types.Bar, error) {
	bars, err := h.bars(symbol)
	if err != nil {
		return types.Bar{}, err
	}

	return bars[len(bars)-1], nil
}

// LatestBars implements Handler.
func (h *LiveHandler) LatestBars(symbol string, n int) ([]types.Bar, error) {
	bars, err := h.bars(symbol)
	if err != nil {
		return nil, err
	}

	if n > len(bars) {
		n = len(bars)
	}

	return bars[len(bars)-n:], nil
}

// LatestBarTime implements Handler.
func (h *LiveHandler) LatestBarTime(symbol string) (time.Time, error) {
	bar, err := h.LatestBar(symbol)
	if err != nil {
		return time.Time{}, err
	}

	return bar.Time, nil
}

// LatestBarValue implements Handler.
func (h *LiveHandler) LatestBarValue(symbol string, field types.BarField) (float64, error) {
	bar, err := h.LatestBar(symbol)
	if err != nil {
		return 0, err
	}

	return bar.Value(field)
}

// LatestBarsValues implements Handler.
func (h *LiveHandler) LatestBarsValues(symbol string, field types.BarField, n int) ([]float64, error) {
	bars, err := h.LatestBars(symbol, n)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(bars))

	for _, bar := range bars {
		value, err := bar.Value(field)
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

// CurrentPrice implements Handler. It quotes the best ask, retrying a
// bounded number of times before reporting the price as unavailable.
// Callers must treat that error as "skip this decision", never as a price.
func (h *LiveHandler) CurrentPrice(symbol string) (float64, error) {
	var lastErr error

	for attempt := 0; attempt < priceFetchRetries; attempt++ {
		price, err := h.api.BestAsk(h.ctx, symbol)
		if err == nil {
			return price, nil
		}

		lastErr = err

		h.log.Warn("price fetch failed, retrying",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return 0, errors.Wrapf(errors.ErrCodePriceUnavailable, lastErr, "no quote for %s after %d attempts", symbol, priceFetchRetries)
}

func (h *LiveHandler) bars(symbol string) ([]types.Bar, error) {
	bars, exists := h.latest[symbol]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "symbol %s is not tracked by this handler", symbol)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoBarData, "no bars fetched yet for symbol %s", symbol)
	}

	return bars, nil
}

// Verify LiveHandler implements the Handler interface.
var _ Handler = (*LiveHandler)(nil)

// BinanceMarketAPI implements MarketAPI against the Binance REST API.
type BinanceMarketAPI struct {
	client *binance.Client
}

// NewBinanceMarketAPI creates a market data API over a Binance client.
// Public market data needs no credentials.
func NewBinanceMarketAPI(apiKey, secretKey string) *BinanceMarketAPI {
	return &BinanceMarketAPI{
		client: binance.NewClient(apiKey, secretKey),
	}
}

// Klines implements MarketAPI.
func (b *BinanceMarketAPI) Klines(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.Bar, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(string(interval)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		bar, err := parseKline(symbol, k)
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// BestAsk implements MarketAPI.
func (b *BinanceMarketAPI) BestAsk(ctx context.Context, symbol string) (float64, error) {
	tickers, err := b.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, err
	}

	if len(tickers) == 0 {
		return 0, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "no book ticker returned for %s", symbol)
	}

	ask, err := strconv.ParseFloat(tickers[0].AskPrice, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid ask price %q", tickers[0].AskPrice)
	}

	return ask, nil
}

func parseKline(symbol string, k *binance.Kline) (types.Bar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid open", err)
	}

	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid high", err)
	}

	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid low", err)
	}

	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid close", err)
	}

	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid volume", err)
	}

	return types.Bar{
		Time:   time.UnixMilli(k.OpenTime),
		Symbol: symbol,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

// Verify BinanceMarketAPI implements the MarketAPI interface.
var _ MarketAPI = (*BinanceMarketAPI)(nil)

package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidSignal        ErrorCode = 103
	ErrCodeInvalidFill          ErrorCode = 104
	ErrCodeInvalidInterval      ErrorCode = 105

	// Data errors (200-299)
	ErrCodeSymbolNotFound   ErrorCode = 200
	ErrCodeInsufficientBars ErrorCode = 201
	ErrCodeNoBarData        ErrorCode = 202
	ErrCodeUnknownBarField  ErrorCode = 203
	ErrCodeDataLoadFailed   ErrorCode = 204

	// Portfolio errors (300-399)
	ErrCodeNoOpenTrade      ErrorCode = 300
	ErrCodeTradeAlreadyOpen ErrorCode = 301
	ErrCodeEmptyEquityCurve ErrorCode = 302

	// Execution errors (400-499)
	ErrCodeOrderRejected ErrorCode = 400
	ErrCodeOrderFailed   ErrorCode = 401

	// Engine errors (500-599)
	ErrCodeEngineInitFailed  ErrorCode = 500
	ErrCodeEngineNoHandler   ErrorCode = 501
	ErrCodeEngineNoStrategy  ErrorCode = 502
	ErrCodeEngineNoExecution ErrorCode = 503
	ErrCodeEngineNoSink      ErrorCode = 504

	// Market data errors (600-699)
	ErrCodePriceUnavailable      ErrorCode = 600
	ErrCodeMarketDataFetchFailed ErrorCode = 601
	ErrCodeMarketDataParseFailed ErrorCode = 602

	// Sink errors (700-799)
	ErrCodeSinkWriteFailed ErrorCode = 700
	ErrCodeSinkInitFailed  ErrorCode = 701
)

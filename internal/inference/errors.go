package inference

import "errors"

var (
	// ErrSignalRejected is the single failure surfaced by AnalyzeImage.
	ErrSignalRejected = errors.New("signal rejected: accuracy below 80%")
	// ErrMarketNoise is the failure surfaced by GenerateSignals; distinct from an empty batch.
	ErrMarketNoise = errors.New("market noise detected, accuracy below 80%, re-syncing")

	ErrNoInstruments = errors.New("no instruments selected")
	ErrEmptyImage    = errors.New("screenshot is empty")
	ErrNotAnImage    = errors.New("screenshot is not a supported raster image")
)

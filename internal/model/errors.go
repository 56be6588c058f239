package model

import (
	"encoding/json"
	"errors"
)

var (
	// ErrDataUnavailable means the provider returned no bars for a symbol.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientHistory means the series is shorter than an indicator warm-up window.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrMalformedUpload means an uploaded report cannot be used.
	ErrMalformedUpload = errors.New("malformed upload")
	// ErrProviderError wraps network, rate-limit and unknown-symbol failures.
	ErrProviderError = errors.New("provider error")
)

// ErrorKind names the taxonomy bucket of a per-symbol failure.
type ErrorKind string

const (
	KindDataUnavailable     ErrorKind = "DATA_UNAVAILABLE"
	KindInsufficientHistory ErrorKind = "INSUFFICIENT_HISTORY"
	KindMalformedUpload     ErrorKind = "MALFORMED_UPLOAD"
	KindProviderError       ErrorKind = "PROVIDER_ERROR"
)

// KindOf classifies err. Unclassified errors count as provider errors.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, ErrMalformedUpload):
		return KindMalformedUpload
	default:
		return KindProviderError
	}
}

// SymbolError records why a symbol was left out of a result.
type SymbolError struct {
	Symbol string
	Kind   ErrorKind
	Err    error
}

// NewSymbolError wraps err for symbol and classifies it.
func NewSymbolError(symbol string, err error) *SymbolError {
	return &SymbolError{Symbol: symbol, Kind: KindOf(err), Err: err}
}

func (e *SymbolError) Error() string { return e.Symbol + ": " + e.Err.Error() }

func (e *SymbolError) Unwrap() error { return e.Err }

// MarshalJSON renders the error message as a string.
func (e SymbolError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Symbol string    `json:"symbol"`
		Kind   ErrorKind `json:"kind"`
		Error  string    `json:"error"`
	}{e.Symbol, e.Kind, msg})
}

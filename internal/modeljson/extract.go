// Package modeljson recovers structured JSON from free-form model completions.
//
// Extract tries progressively more permissive strategies and only fails when
// none of them yields a JSON object or array.
package modeljson

import (
	"encoding/json"
	"errors"
	"strings"
)

type Strategy int

const (
	StrategyDirect Strategy = iota + 1
	StrategyBraces
	StrategyRepair
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyBraces:
		return "braces"
	case StrategyRepair:
		return "repair"
	default:
		return "unknown"
	}
}

var (
	// ErrMalformedModelOutput is matched by every *MalformedOutputError.
	ErrMalformedModelOutput = errors.New("model output is not recoverable as structured data")

	errNotStructured = errors.New("value is not an object or array")
	errNoBraces      = errors.New("no brace pair found")
	errNoOpener      = errors.New("no opening bracket found")
	errNoContent     = errors.New("bracketed text holds no strings or keys")
)

// MalformedOutputError carries the raw completion for diagnostics.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return ErrMalformedModelOutput.Error()
}

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedModelOutput
}

type Result struct {
	Value    any
	Strategy Strategy
}

// Extract runs Direct, Braces and Repair in that order and returns the first
// structured value found.
func Extract(raw string) (*Result, error) {
	if v, err := Direct(raw); err == nil {
		return &Result{Value: v, Strategy: StrategyDirect}, nil
	}
	if v, err := Braces(raw); err == nil {
		return &Result{Value: v, Strategy: StrategyBraces}, nil
	}
	if v, err := Repair(raw); err == nil {
		return &Result{Value: v, Strategy: StrategyRepair}, nil
	}
	return nil, &MalformedOutputError{Raw: raw}
}

// Direct parses the whole text.
func Direct(raw string) (any, error) {
	return decodeStructured(strings.TrimSpace(raw))
}

// Braces parses the substring from the first '{' to the last '}'.
func Braces(raw string) (any, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, errNoBraces
	}
	return decodeStructured(raw[start : end+1])
}

// Repair rewrites the text starting at the first '{' or '[' into valid JSON
// and parses the result. Brackets holding only bare words are rejected.
func Repair(raw string) (any, error) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return nil, errNoOpener
	}
	fixed, ok := repair(raw[start:])
	if !ok {
		return nil, errNoContent
	}
	return decodeStructured(fixed)
}

func decodeStructured(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	default:
		return nil, errNotStructured
	}
}

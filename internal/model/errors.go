package model

import "fmt"

// InvalidInputError reports a source table that cannot be processed at all:
// empty, missing a required column, or with no usable rows.
type InvalidInputError struct {
	Source string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Source == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input %s: %s", e.Source, e.Reason)
}

// ParseError reports a raw field that could not be parsed.
type ParseError struct {
	Source string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s line %d column %q value %q: %v", e.Source, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsufficientDataError is returned when an indicator value is requested
// before its window is satisfied.
type InsufficientDataError struct {
	Indicator string
	Index     int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("%s undefined at index %d: needs %d records", e.Indicator, e.Index, e.Required)
	}
	return fmt.Sprintf("%s undefined", e.Indicator)
}

package summary

import "errors"

var (
	ErrSummaryNotFound = errors.New("daily team summary not found")
	ErrInvalidRange    = errors.New("end date must not be before start date")
)

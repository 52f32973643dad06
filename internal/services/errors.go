package services

import "errors"

// Dashboard errors
var (
	ErrInvalidRange       = errors.New("start date is after end date")
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrEmptyDataset       = errors.New("dataset holds no orders")

	// Export errors
	ErrExportFailed = errors.New("workbook export failed")
)

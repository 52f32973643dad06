// Package exporter renders analytics output into downloadable formats.
//
// Two exporters are provided:
//
// XLSXExporter: writes a dashboard snapshot as a workbook with one overview
// sheet for the KPI cards and one sheet per chart.
//
// CSVWriter: streams the denormalized order table as CSV, with an optional
// UTF-8 BOM for Excel compatibility.
package exporter

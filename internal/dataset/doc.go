// Package dataset reads the e-commerce CSV source tables and joins them
// into one denormalized per-order table. The joined table is built once at
// startup, is immutable afterwards, and is shared read-only by all requests.
package dataset

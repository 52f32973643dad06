// Package analytics filters and aggregates the joined order table. Every
// function is pure: a summary depends only on the subset passed in, with
// no state retained between calls.
package analytics

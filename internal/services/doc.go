// Package services contains the business logic between the HTTP transport
// and the in-memory dataset. Services receive their dependencies through
// constructors and log with the injected slog logger.
package services

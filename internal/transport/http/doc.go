// Package http contains the chi HTTP handlers. Handlers bind and validate
// request input, delegate to the services layer and render JSON through
// go-chi/render; all errors flow through the shared ErrorHandler.
package http

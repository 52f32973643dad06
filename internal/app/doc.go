// Package app wires the application together: configuration loading,
// logging, dataset loading, service construction, routing and graceful
// shutdown. All components are injected at startup; the app does not call
// os.Exit() itself so main controls the exit process.
package app

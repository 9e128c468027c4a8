// Package server hosts the Fiber HTTP service, request middleware chain, and
// the upstream registry glue that wires Host resolution into lookup handlers.
// It bootstraps Fiber, attaches recover and request-ID middlewares, injects
// the Registry built from config, and exposes router constructors that other
// packages (main, proxy) can reuse. Keep exports narrow and accept explicit
// dependencies so handlers stay replaceable in tests.
package server

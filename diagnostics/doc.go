// Package diagnostics exposes a built container over HTTP.
//
// The handlers are read-only: they list registrations, the dependency
// graph, the validation report and the resolution log. They never resolve
// services, so mounting them on a live container has no side effects.
//
//	router := diagnostics.New(container, diagnostics.WithLogger(log))
//	_ = http.ListenAndServe(":8081", router)
package diagnostics

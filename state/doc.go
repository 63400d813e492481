// Package state houses concrete implementations of the core.StateStore.
// The interface itself (and the AgentState struct) live in the core package
// to centralize domain contracts. Keeping only implementations here prevents
// higher level packages (engine, programs) from depending on concrete
// storage.
//
// Add additional backends (Redis, Postgres, etc.) in sub‑packages without
// changing any calling code – only the wiring layer needs to decide which
// implementation to instantiate.
package state

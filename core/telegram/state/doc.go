// Package state tracks pending multi-step admin operations keyed by actor.
// Sessions are in-memory only and do not survive a restart.
package state

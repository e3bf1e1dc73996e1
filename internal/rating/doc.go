// Package rating owns the per-user vote state machine and the applier that
// turns a vote request into one atomic store update.
//
// Decide is a pure function of (state, intent). The Applier reads the caller's
// state, decides, and hands the resulting transition to the store, which
// applies it conditionally so concurrent voters never lose an update.
package rating

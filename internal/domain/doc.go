// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (item.go, vote.go, account.go, etc.)
// with shared types and cross-cutting interfaces. No implementation code - just contracts
// and the small pure helpers that belong to the types themselves.
package domain

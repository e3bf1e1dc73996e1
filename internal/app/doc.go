// Package app provides the application service layer.
//
// Orchestrates use cases: item CRUD with image cleanup and ownership, votes
// with one transparent conflict retry, signup, and throttled login.
// Sits between HTTP handlers and domain repositories. Depends on domain interfaces, not concrete implementations.
package app

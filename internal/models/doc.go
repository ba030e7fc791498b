// Package models defines the entities shared between the gateway, the trigger and the history store.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): the wire shape exchanged with the generation backend
//   - [GenerationResult] : outcome of one generate call; Message is always populated
//
// 2. Persistent Entities: database-backed records
//   - [Run] : one settled generate invocation, kept for the history commands
//
// Persistent entities implement the [Model] interface. The [Repository] interface defines the storage operations.
package models

// Package service contains small infrastructure adapters behind the
// application layer's collaborator interfaces: ID generation, password
// hashing, artifact rendering and storage, and notice delivery.
package service

import (
	"github.com/google/uuid"
)

// UUIDGenerator implements command.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// GenerateID returns a new random UUID string.
func (g *UUIDGenerator) GenerateID() string {
	return uuid.New().String()
}

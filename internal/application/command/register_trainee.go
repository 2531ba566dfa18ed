package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER TRAINEE COMMAND
// Creates a trainee profile in the Registered state. No public identifier is
// assigned here; that happens at selection time.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterTraineeCommand contains the data needed to register a trainee.
type RegisterTraineeCommand struct {
	// Name is the trainee's full name.
	Name string

	// FatherName is the father's name, rendered on admit card and certificate.
	FatherName string

	// Email is the login identity; must be unique.
	Email string

	// Password is the plain-text password; hashed before storage.
	Password string

	// College is the institution the trainee comes from.
	College string

	// Course is the enrolled course, e.g. "B.Tech".
	Course string

	// Branch is the engineering branch; projects are matched on it.
	Branch string

	// Address is the postal address.
	Address string

	// Mobile is the contact number (optional).
	Mobile string

	// PhotoRef points to the uploaded photo artifact (optional).
	PhotoRef string

	// LORRef points to the letter-of-recommendation artifact (optional).
	LORRef string
}

// Validate validates the command.
func (c RegisterTraineeCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("register_trainee: name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("register_trainee: email is required")
	}
	if len(c.Password) < 8 {
		return errors.New("register_trainee: password must be at least 8 characters")
	}
	if strings.TrimSpace(c.Branch) == "" {
		return errors.New("register_trainee: branch is required")
	}
	return nil
}

// RegisterTraineeResult contains the result of registration.
type RegisterTraineeResult struct {
	// TraineeID is the internal ID of the created trainee.
	TraineeID string

	// State is the lifecycle state after registration (always Registered).
	State trainee.State
}

// PasswordHasher hashes credentials before they reach storage.
type PasswordHasher interface {
	// Hash returns the hash of a plain-text password.
	Hash(password string) (string, error)

	// Compare checks a plain-text password against a stored hash.
	Compare(hash, password string) error
}

// RegisterTraineeHandler handles the RegisterTraineeCommand.
type RegisterTraineeHandler struct {
	uow            UnitOfWork
	idGen          IDGenerator
	hasher         PasswordHasher
	eventPublisher shared.EventPublisher
}

// NewRegisterTraineeHandler creates a new RegisterTraineeHandler.
func NewRegisterTraineeHandler(
	uow UnitOfWork,
	idGen IDGenerator,
	hasher PasswordHasher,
	eventPublisher shared.EventPublisher,
) *RegisterTraineeHandler {
	return &RegisterTraineeHandler{
		uow:            uow,
		idGen:          idGen,
		hasher:         hasher,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register trainee command.
func (h *RegisterTraineeHandler) Handle(ctx context.Context, cmd RegisterTraineeCommand) (*RegisterTraineeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_trainee: validation failed: %w", err)
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_trainee: failed to hash password: %w", err)
	}

	newTrainee, err := trainee.NewTrainee(trainee.NewTraineeParams{
		ID:           h.idGen.GenerateID(),
		Name:         cmd.Name,
		FatherName:   cmd.FatherName,
		Email:        cmd.Email,
		PasswordHash: hash,
		College:      cmd.College,
		Course:       cmd.Course,
		Branch:       trainee.Branch(cmd.Branch),
		Address:      cmd.Address,
		Mobile:       trainee.Mobile(cmd.Mobile),
		PhotoRef:     cmd.PhotoRef,
		LORRef:       cmd.LORRef,
	})
	if err != nil {
		return nil, fmt.Errorf("register_trainee: %w", err)
	}

	err = h.uow.RunInTx(ctx, newTrainee.ID, func(s Stores) error {
		return s.Trainees.Create(ctx, newTrainee)
	})
	if err != nil {
		return nil, fmt.Errorf("register_trainee: failed to save trainee: %w", err)
	}

	// Publish after commit. Delivery failure never unwinds the registration.
	event := shared.NewTraineeRegisteredEvent(
		newTrainee.ID,
		newTrainee.Name,
		newTrainee.Email,
		newTrainee.Branch.String(),
	)
	_ = h.eventPublisher.Publish(event)

	return &RegisterTraineeResult{
		TraineeID: newTrainee.ID,
		State:     trainee.StateRegistered,
	}, nil
}

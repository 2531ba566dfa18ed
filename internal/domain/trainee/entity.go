// Package trainee contains the trainee aggregate of the training hub and the
// lifecycle state machine that governs its progress from registration to
// certificate verification. This is the core of the business logic; there are
// no external dependencies here.
package trainee

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Branch is the trainee's discipline (e.g. "Electrical", "Mechanical").
// Free-form; projects carry a matching branch tag used for eligibility.
type Branch string

// IsValid checks the branch is a non-empty short label.
func (b Branch) IsValid() bool {
	s := strings.TrimSpace(string(b))
	return len(s) >= 2 && len(s) <= 50
}

// String returns the string representation of the branch.
func (b Branch) String() string {
	return string(b)
}

// Mobile is a contact phone number captured at registration.
type Mobile string

// IsValid performs a loose length check; formats vary by region.
func (m Mobile) IsValid() bool {
	s := string(m)
	return len(s) >= 7 && len(s) <= 15
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: TRAINEE
// ══════════════════════════════════════════════════════════════════════════════

// Trainee is the central entity of the enrollment workflow. The workflow owns
// it exclusively; it is mutated only through lifecycle transitions.
type Trainee struct {
	// ID is the internal immutable identifier (UUID in string form).
	ID string

	// PublicID is the assigned public identifier (e.g. "STVT25/01").
	// Empty until the first selection event generates it.
	PublicID sequence.Identifier

	// Name is the trainee's full name.
	Name string

	// FatherName is the guardian name captured on the registration form.
	FatherName string

	// Email is the contact address notices are sent to.
	Email string

	// PasswordHash is the bcrypt hash captured at registration.
	PasswordHash string

	// College is the institution the trainee comes from.
	College string

	// Course is the course the trainee is enrolled in at their institution.
	Course string

	// Branch is the trainee's discipline; filters eligible projects.
	Branch Branch

	// Address is the postal address from the registration form.
	Address string

	// Mobile is the contact phone number.
	Mobile Mobile

	// PhotoRef and LORRef point at stored registration artifacts
	// (photograph, letter of recommendation). Empty when not uploaded.
	PhotoRef string
	LORRef   string

	// Selected is set when an administrator marks the trainee selected.
	Selected bool

	// PaymentVerified is set when the fee payment is confirmed.
	PaymentVerified bool

	// CreatedAt is when the registration was recorded.
	CreatedAt time.Time

	// UpdatedAt is the time of the last mutation.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrTraineeNotFound - no trainee with the given identifier.
	ErrTraineeNotFound = fmt.Errorf("trainee not found: %w", shared.ErrNotFound)

	// ErrTraineeAlreadyExists - registration with a taken email.
	ErrTraineeAlreadyExists = fmt.Errorf("trainee already exists: %w", shared.ErrAlreadyExists)

	// ErrInvalidName - name missing or too long.
	ErrInvalidName = errors.New("invalid name: must be 1-100 chars")

	// ErrInvalidBranch - branch missing or too long.
	ErrInvalidBranch = errors.New("invalid branch: must be 2-50 chars")

	// ErrInvalidEmail - email missing or malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidMobile - mobile number outside plausible length.
	ErrInvalidMobile = errors.New("invalid mobile: must be 7-15 chars")

	// ErrPublicIDAssigned - attempt to overwrite an assigned public ID.
	// Public identifiers are generated exactly once per trainee.
	ErrPublicIDAssigned = errors.New("public id already assigned")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewTraineeParams contains the parameters for registering a trainee.
type NewTraineeParams struct {
	ID           string
	Name         string
	FatherName   string
	Email        string
	PasswordHash string
	College      string
	Course       string
	Branch       Branch
	Address      string
	Mobile       Mobile
	PhotoRef     string
	LORRef       string
}

// NewTrainee creates a trainee with all fields validated. A fresh trainee
// starts in the Registered lifecycle state: not selected, not verified,
// no public identifier.
func NewTrainee(params NewTraineeParams) (*Trainee, error) {
	if params.ID == "" {
		return nil, errors.New("trainee id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	if !params.Branch.IsValid() {
		return nil, ErrInvalidBranch
	}

	email := strings.TrimSpace(params.Email)
	if len(email) < 3 || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if params.Mobile != "" && !params.Mobile.IsValid() {
		return nil, ErrInvalidMobile
	}

	now := time.Now().UTC()

	return &Trainee{
		ID:           params.ID,
		Name:         name,
		FatherName:   strings.TrimSpace(params.FatherName),
		Email:        email,
		PasswordHash: params.PasswordHash,
		College:      strings.TrimSpace(params.College),
		Course:       strings.TrimSpace(params.Course),
		Branch:       params.Branch,
		Address:      strings.TrimSpace(params.Address),
		Mobile:       params.Mobile,
		PhotoRef:     params.PhotoRef,
		LORRef:       params.LORRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// AssignPublicID records the generated public identifier. It refuses to
// overwrite an existing one: generation happens exactly once per trainee,
// so a retried transition must skip generation instead of calling this again.
func (t *Trainee) AssignPublicID(id sequence.Identifier) error {
	if !t.PublicID.IsEmpty() {
		return ErrPublicIDAssigned
	}
	if id.IsEmpty() {
		return errors.New("public id cannot be empty")
	}

	t.PublicID = id
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkSelected flips the selection flag. The enclosing transition is
// responsible for generating the public ID and creating the fee record
// in the same transactional unit.
func (t *Trainee) MarkSelected() {
	t.Selected = true
	t.UpdatedAt = time.Now().UTC()
}

// MarkPaymentVerified records the fee verification on the trainee.
func (t *Trainee) MarkPaymentVerified() {
	t.PaymentVerified = true
	t.UpdatedAt = time.Now().UTC()
}

// String returns a short representation for logging.
func (t *Trainee) String() string {
	publicID := "unassigned"
	if !t.PublicID.IsEmpty() {
		publicID = t.PublicID.String()
	}
	return fmt.Sprintf("Trainee{ID: %s, PublicID: %s, Branch: %s}", t.ID, publicID, t.Branch)
}

// Clone creates a deep copy of the trainee.
func (t *Trainee) Clone() *Trainee {
	if t == nil {
		return nil
	}

	clone := *t
	return &clone
}

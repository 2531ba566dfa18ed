// Package sequence defines the sequential identifier contract for the
// training hub: gap-free, collision-free identifiers scoped by a category
// (trainee public ID, certificate serial) and a time bucket (calendar year).
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// Category identifies the kind of identifier being generated. Each category
// owns an independent counter per bucket.
type Category string

const (
	// CategoryTraineeID is the public trainee identifier (e.g. "STVT25/01").
	CategoryTraineeID Category = "trainee_id"

	// CategoryCertificate is the certificate serial (e.g. "CERT25/01").
	CategoryCertificate Category = "certificate"
)

// IsValid checks that the category is known.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTraineeID, CategoryCertificate:
		return true
	default:
		return false
	}
}

// Prefix returns the identifier prefix for the category.
func (c Category) Prefix() string {
	switch c {
	case CategoryTraineeID:
		return "STVT"
	case CategoryCertificate:
		return "CERT"
	default:
		return ""
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Bucket is a time-scoped partition for identifier sequencing. Counters are
// independent per (category, bucket) pair and never restart mid-bucket.
type Bucket int

// BucketFor returns the bucket for the given time (two-digit calendar year).
func BucketFor(t time.Time) Bucket {
	return Bucket(t.Year() % 100)
}

// IsValid checks that the bucket is a two-digit year.
func (b Bucket) IsValid() bool {
	return b >= 0 && b <= 99
}

// String returns the zero-padded two-digit form of the bucket.
func (b Bucket) String() string {
	return fmt.Sprintf("%02d", int(b))
}

// Identifier is a formatted sequential identifier.
type Identifier string

// String returns the string form of the identifier.
func (i Identifier) String() string {
	return string(i)
}

// IsEmpty reports whether the identifier has been assigned.
func (i Identifier) IsEmpty() bool {
	return i == ""
}

// Format renders an identifier as {PREFIX}{yy}/{seq}, where seq is
// zero-padded to at least two digits and widens naturally past 99.
// The first trainee selected in 2025 gets "STVT25/01".
func Format(category Category, bucket Bucket, seq int) Identifier {
	return Identifier(fmt.Sprintf("%s%02d/%02d", category.Prefix(), int(bucket), seq))
}

// Generator produces the next identifier in a (category, bucket) counter.
//
// Implementations must guarantee that no two calls in the same bucket ever
// return the same sequence number, even under concurrent callers, and that
// the sequence is derived from a durable count of committed identifiers, not
// an in-process variable, so a restart cannot cause reuse. When invoked
// inside a transactional unit, a rollback of the enclosing transition may
// leave a gap in the sequence; a gap is acceptable, a duplicate never is.
type Generator interface {
	// Next returns the next identifier for the category and bucket, or an
	// error matching shared.ErrGenerationFailed when the durable counter
	// cannot be read or committed. The caller must then roll back the whole
	// transition.
	Next(ctx context.Context, category Category, bucket Bucket) (Identifier, error)
}

// ValidateRequest checks generator inputs before touching the counter.
func ValidateRequest(category Category, bucket Bucket) error {
	if !category.IsValid() {
		return shared.NewDomainError("sequence", "Next", shared.ErrInvalidInput,
			fmt.Sprintf("unknown category %q", category))
	}
	if !bucket.IsValid() {
		return shared.NewDomainError("sequence", "Next", shared.ErrValueOutOfRange,
			fmt.Sprintf("bucket %d outside 0-99", bucket))
	}
	return nil
}

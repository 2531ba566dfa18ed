package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat_ZeroPadding(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		bucket   Bucket
		seq      int
		want     string
	}{
		{"first trainee of 2025", CategoryTraineeID, 25, 1, "STVT25/01"},
		{"ninth trainee", CategoryTraineeID, 25, 9, "STVT25/09"},
		{"two digit seq", CategoryTraineeID, 25, 42, "STVT25/42"},
		{"seq widens past 99", CategoryTraineeID, 25, 100, "STVT25/100"},
		{"seq widens past 999", CategoryTraineeID, 25, 1234, "STVT25/1234"},
		{"certificate serial", CategoryCertificate, 25, 1, "CERT25/01"},
		{"single digit bucket pads", CategoryCertificate, 7, 3, "CERT07/03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.category, tt.bucket, tt.seq)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, Bucket(25), BucketFor(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Bucket(0), BucketFor(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "25", BucketFor(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).String())
}

func TestCategory_Prefix(t *testing.T) {
	assert.Equal(t, "STVT", CategoryTraineeID.Prefix())
	assert.Equal(t, "CERT", CategoryCertificate.Prefix())
	assert.True(t, CategoryTraineeID.IsValid())
	assert.False(t, Category("bogus").IsValid())
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(CategoryTraineeID, 25))
	assert.Error(t, ValidateRequest(Category("bogus"), 25))
	assert.Error(t, ValidateRequest(CategoryCertificate, 100))
	assert.Error(t, ValidateRequest(CategoryCertificate, -1))
}

func TestIdentifier_IsEmpty(t *testing.T) {
	var id Identifier
	assert.True(t, id.IsEmpty())
	assert.False(t, Format(CategoryTraineeID, 25, 1).IsEmpty())
}

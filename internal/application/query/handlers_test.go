package query_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvt-hub/stvt-training-hub/internal/application/query"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/memory"
)

func seedTrainee(t *testing.T, store *memory.Store, id string) *trainee.Trainee {
	t.Helper()
	tr, err := trainee.NewTrainee(trainee.NewTraineeParams{
		ID:           id,
		Name:         "Asha Patel",
		FatherName:   "M. Patel",
		Email:        id + "@example.com",
		PasswordHash: "$2a$10$hash",
		College:      "Govt Polytechnic",
		Course:       "B.Tech",
		Branch:       "Electrical",
		Address:      "Hyderabad",
	})
	require.NoError(t, err)
	require.NoError(t, store.Trainees().Create(context.Background(), tr))
	return tr
}

func seedProject(t *testing.T, store *memory.Store, id string, slots int) *project.Project {
	t.Helper()
	p, err := project.NewProject(project.NewProjectParams{
		ID:            id,
		Title:         "PLC Automation",
		Branch:        "Electrical",
		Supervisor:    "R. Sharma",
		DurationWeeks: 4,
		StartDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC),
		TotalSlots:    slots,
	})
	require.NoError(t, err)
	require.NoError(t, store.Projects().Create(context.Background(), p))
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// Dashboard
// ─────────────────────────────────────────────────────────────────────────────

func TestGetDashboard_FreshRegistration(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedTrainee(t, store, "t-1")

	h := query.NewGetDashboardHandler(store.Trainees(), store.Projects(), store.Enrollment())

	result, err := h.Handle(ctx, query.GetDashboardQuery{TraineeID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, trainee.StateRegistered, result.State)
	assert.Equal(t, []trainee.State{trainee.StateSelected}, result.NextStates)
	assert.Empty(t, result.PublicID)
	assert.Nil(t, result.Fee)
	assert.Nil(t, result.Selection)
	assert.Nil(t, result.Certificate)
}

func TestGetDashboard_FeeSentShowsDueWindow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tr := seedTrainee(t, store, "t-1")

	tr.MarkSelected()
	require.NoError(t, tr.AssignPublicID(sequence.Format(sequence.CategoryTraineeID, 26, 1)))
	require.NoError(t, store.Trainees().Update(ctx, tr))

	fee, err := enrollment.NewFeeRecord("fee-1", "t-1")
	require.NoError(t, err)
	require.NoError(t, fee.MarkSent("t-1/challan.txt"))
	require.NoError(t, store.Enrollment().CreateFeeRecord(ctx, fee))

	h := query.NewGetDashboardHandler(store.Trainees(), store.Projects(), store.Enrollment())

	result, err := h.Handle(ctx, query.GetDashboardQuery{TraineeID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, trainee.StateFeeSent, result.State)
	assert.Equal(t, "STVT26/01", result.PublicID)
	require.NotNil(t, result.Fee)
	assert.Equal(t, "sent", result.Fee.Status)
	require.NotNil(t, result.Fee.DueBy)
	assert.Equal(t, result.Fee.SentAt.AddDate(0, 0, query.FeeDueDays), *result.Fee.DueBy)
	assert.False(t, result.Fee.Overdue)
}

func TestGetDashboard_SelectionCarriesProjectDetails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tr := seedTrainee(t, store, "t-1")
	seedProject(t, store, "p-1", 2)

	tr.MarkSelected()
	tr.MarkPaymentVerified()
	require.NoError(t, store.Trainees().Update(ctx, tr))

	sel, err := enrollment.NewSelection("sel-1", "t-1", "p-1")
	require.NoError(t, err)
	require.NoError(t, store.Enrollment().CreateSelection(ctx, sel))

	h := query.NewGetDashboardHandler(store.Trainees(), store.Projects(), store.Enrollment())

	result, err := h.Handle(ctx, query.GetDashboardQuery{TraineeID: "t-1"})
	require.NoError(t, err)

	assert.Equal(t, trainee.StateProjectRequested, result.State)
	require.NotNil(t, result.Selection)
	assert.Equal(t, "p-1", result.Selection.ProjectID)
	assert.Equal(t, "PLC Automation", result.Selection.ProjectTitle)
	assert.Equal(t, "R. Sharma", result.Selection.Supervisor)
}

func TestGetDashboard_UnknownTrainee(t *testing.T) {
	store := memory.NewStore()
	h := query.NewGetDashboardHandler(store.Trainees(), store.Projects(), store.Enrollment())

	_, err := h.Handle(context.Background(), query.GetDashboardQuery{TraineeID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Available projects
// ─────────────────────────────────────────────────────────────────────────────

// recordingCache counts hits so tests can tell cache reads from source reads.
type recordingCache struct {
	entries map[string][]*project.Project
	sets    int
	gets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string][]*project.Project)}
}

func (c *recordingCache) GetAvailable(ctx context.Context, branch string) ([]*project.Project, bool, error) {
	c.gets++
	projects, ok := c.entries[branch]
	return projects, ok, nil
}

func (c *recordingCache) SetAvailable(ctx context.Context, branch string, projects []*project.Project) error {
	c.sets++
	c.entries[branch] = projects
	return nil
}

func (c *recordingCache) InvalidateAvailable(ctx context.Context, branch string) error {
	delete(c.entries, branch)
	return nil
}

// failingCache simulates a cache backend outage.
type failingCache struct{}

func (failingCache) GetAvailable(ctx context.Context, branch string) ([]*project.Project, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) SetAvailable(ctx context.Context, branch string, projects []*project.Project) error {
	return errors.New("connection refused")
}

func (failingCache) InvalidateAvailable(ctx context.Context, branch string) error {
	return errors.New("connection refused")
}

func TestListAvailableProjects_PopulatesAndHitsCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProject(t, store, "p-1", 2)
	cache := newRecordingCache()

	h := query.NewListAvailableProjectsHandler(store.Projects(), cache)

	first, err := h.Handle(ctx, query.ListAvailableProjectsQuery{Branch: "Electrical"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Len(t, first.Projects, 1)
	assert.Equal(t, 1, cache.sets)

	second, err := h.Handle(ctx, query.ListAvailableProjectsQuery{Branch: "Electrical"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Len(t, second.Projects, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestListAvailableProjects_BypassCacheReadsSource(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProject(t, store, "p-1", 2)
	cache := newRecordingCache()

	h := query.NewListAvailableProjectsHandler(store.Projects(), cache)

	_, err := h.Handle(ctx, query.ListAvailableProjectsQuery{Branch: "Electrical"})
	require.NoError(t, err)

	result, err := h.Handle(ctx, query.ListAvailableProjectsQuery{Branch: "Electrical", BypassCache: true})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
}

func TestListAvailableProjects_CacheOutageFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProject(t, store, "p-1", 2)

	h := query.NewListAvailableProjectsHandler(store.Projects(), failingCache{})

	result, err := h.Handle(ctx, query.ListAvailableProjectsQuery{Branch: "Electrical"})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Projects, 1)
}

func TestListAvailableProjects_FullProjectsExcluded(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedProject(t, store, "p-1", 1)

	_, err := store.Projects().Reserve(ctx, "p-1")
	require.NoError(t, err)

	h := query.NewListAvailableProjectsHandler(store.Projects(), nil)

	result, err := h.Handle(ctx, query.ListAvailableProjectsQuery{Branch: "Electrical"})
	require.NoError(t, err)
	assert.Empty(t, result.Projects)
}

// ─────────────────────────────────────────────────────────────────────────────
// Certificate registry
// ─────────────────────────────────────────────────────────────────────────────

func seedVerifiedCertificate(t *testing.T, store *memory.Store, traineeID string, seq int) {
	t.Helper()
	ctx := context.Background()

	serial := sequence.Format(sequence.CategoryCertificate, 26, seq)
	cert, err := enrollment.NewCertificateRecord("cert-"+traineeID, traineeID, serial)
	require.NoError(t, err)
	require.NoError(t, cert.MarkVerified(traineeID+"/certificate.txt"))
	require.NoError(t, store.Enrollment().CreateCertificate(ctx, cert))
}

func TestListVerifiedCertificates_ListsAll(t *testing.T) {
	store := memory.NewStore()
	seedTrainee(t, store, "t-1")
	seedTrainee(t, store, "t-2")
	seedVerifiedCertificate(t, store, "t-1", 1)
	seedVerifiedCertificate(t, store, "t-2", 2)

	h := query.NewListVerifiedCertificatesHandler(store.Trainees(), store.Enrollment())

	result, err := h.Handle(context.Background(), query.ListVerifiedCertificatesQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, "Asha Patel", result.Certificates[0].TraineeName)
}

func TestListVerifiedCertificates_SerialFilterIsCaseInsensitive(t *testing.T) {
	store := memory.NewStore()
	seedTrainee(t, store, "t-1")
	seedTrainee(t, store, "t-2")
	seedVerifiedCertificate(t, store, "t-1", 1)
	seedVerifiedCertificate(t, store, "t-2", 2)

	h := query.NewListVerifiedCertificatesHandler(store.Trainees(), store.Enrollment())

	result, err := h.Handle(context.Background(), query.ListVerifiedCertificatesQuery{Serial: "cert26/02"})
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "CERT26/02", result.Certificates[0].Serial)
}

func TestListVerifiedCertificates_UnknownSerialEmpty(t *testing.T) {
	store := memory.NewStore()
	seedTrainee(t, store, "t-1")
	seedVerifiedCertificate(t, store, "t-1", 1)

	h := query.NewListVerifiedCertificatesHandler(store.Trainees(), store.Enrollment())

	result, err := h.Handle(context.Background(), query.ListVerifiedCertificatesQuery{Serial: "CERT99/99"})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
	assert.Empty(t, result.Certificates)
}

// ─────────────────────────────────────────────────────────────────────────────
// Certificate export
// ─────────────────────────────────────────────────────────────────────────────

// mapDocStore is an in-memory document.Store for export tests.
type mapDocStore struct {
	docs map[document.ArtifactRef][]byte
}

func newMapDocStore() *mapDocStore {
	return &mapDocStore{docs: make(map[document.ArtifactRef][]byte)}
}

func (s *mapDocStore) Ref(ownerID string, kind document.ArtifactKind) document.ArtifactRef {
	return document.ArtifactRef(ownerID + "/" + kind.String() + ".txt")
}

func (s *mapDocStore) Put(ctx context.Context, ownerID string, kind document.ArtifactKind, data []byte, getOrCreate bool) (document.ArtifactRef, error) {
	ref := s.Ref(ownerID, kind)
	if getOrCreate {
		if _, exists := s.docs[ref]; exists {
			return ref, nil
		}
	}
	s.docs[ref] = data
	return ref, nil
}

func (s *mapDocStore) Get(ctx context.Context, ref document.ArtifactRef) ([]byte, error) {
	data, ok := s.docs[ref]
	if !ok {
		return nil, document.ErrStoreFailed
	}
	return data, nil
}

// seedCertificateArtifact verifies a certificate and stores its artifact.
func seedCertificateArtifact(t *testing.T, store *memory.Store, docs *mapDocStore, traineeID string, seq int) {
	t.Helper()
	ctx := context.Background()

	serial := sequence.Format(sequence.CategoryCertificate, 26, seq)
	cert, err := enrollment.NewCertificateRecord("cert-"+traineeID, traineeID, serial)
	require.NoError(t, err)
	ref := docs.Ref(traineeID, document.KindCertificate)
	require.NoError(t, cert.MarkVerified(ref.String()))
	require.NoError(t, store.Enrollment().CreateCertificate(ctx, cert))

	_, err = docs.Put(ctx, traineeID, document.KindCertificate, []byte("certificate "+serial.String()), false)
	require.NoError(t, err)
}

func readArchiveNames(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestExportCertificates_ArchivesEveryVerifiedArtifact(t *testing.T) {
	store := memory.NewStore()
	docs := newMapDocStore()
	seedTrainee(t, store, "t-1")
	seedTrainee(t, store, "t-2")
	seedCertificateArtifact(t, store, docs, "t-1", 1)
	seedCertificateArtifact(t, store, docs, "t-2", 2)

	h := query.NewExportCertificatesHandler(store.Enrollment(), docs)

	var buf bytes.Buffer
	result, err := h.Handle(context.Background(), query.ExportCertificatesQuery{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Exported)
	assert.Zero(t, result.Skipped)
	assert.ElementsMatch(t, []string{"CERT26-01.txt", "CERT26-02.txt"}, readArchiveNames(t, &buf))
}

func TestExportCertificates_SerialFilterNarrowsArchive(t *testing.T) {
	store := memory.NewStore()
	docs := newMapDocStore()
	seedTrainee(t, store, "t-1")
	seedTrainee(t, store, "t-2")
	seedCertificateArtifact(t, store, docs, "t-1", 1)
	seedCertificateArtifact(t, store, docs, "t-2", 2)

	h := query.NewExportCertificatesHandler(store.Enrollment(), docs)

	var buf bytes.Buffer
	result, err := h.Handle(context.Background(), query.ExportCertificatesQuery{
		Serials: []string{"cert26/02"},
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.ElementsMatch(t, []string{"CERT26-02.txt"}, readArchiveNames(t, &buf))
}

func TestExportCertificates_SkipsUnrenderedArtifacts(t *testing.T) {
	store := memory.NewStore()
	docs := newMapDocStore()
	seedTrainee(t, store, "t-1")
	seedTrainee(t, store, "t-2")
	seedCertificateArtifact(t, store, docs, "t-1", 1)
	// Verified but the post-commit rendering has not landed yet.
	seedVerifiedCertificate(t, store, "t-2", 2)

	h := query.NewExportCertificatesHandler(store.Enrollment(), docs)

	var buf bytes.Buffer
	result, err := h.Handle(context.Background(), query.ExportCertificatesQuery{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 1, result.Skipped)
	assert.ElementsMatch(t, []string{"CERT26-01.txt"}, readArchiveNames(t, &buf))
}

package command_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvt-hub/stvt-training-hub/internal/application/command"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/memory"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────────────────────

type uuidGen struct{}

func (uuidGen) GenerateID() string { return uuid.NewString() }

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type stubRenderer struct{}

func (stubRenderer) RenderChallan(v document.ChallanView) ([]byte, error) {
	return []byte("challan for " + v.PublicID), nil
}

func (stubRenderer) RenderAdmitCard(v document.AdmitCardView) ([]byte, error) {
	return []byte("admit card for " + v.PublicID), nil
}

func (stubRenderer) RenderCertificate(v document.CertificateView) ([]byte, error) {
	return []byte("certificate " + v.Serial), nil
}

type memDocStore struct {
	mu   sync.Mutex
	docs map[document.ArtifactRef][]byte
	puts int
}

func newMemDocStore() *memDocStore {
	return &memDocStore{docs: make(map[document.ArtifactRef][]byte)}
}

func (s *memDocStore) Ref(ownerID string, kind document.ArtifactKind) document.ArtifactRef {
	return document.ArtifactRef(ownerID + "/" + kind.String())
}

func (s *memDocStore) Put(ctx context.Context, ownerID string, kind document.ArtifactKind, data []byte, getOrCreate bool) (document.ArtifactRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.Ref(ownerID, kind)
	if getOrCreate {
		if _, exists := s.docs[ref]; exists {
			return ref, nil
		}
	}
	s.docs[ref] = data
	s.puts++
	return ref, nil
}

func (s *memDocStore) Get(ctx context.Context, ref document.ArtifactRef) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.docs[ref]
	if !ok {
		return nil, document.ErrStoreFailed
	}
	return data, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Environment
// ─────────────────────────────────────────────────────────────────────────────

type env struct {
	store     *memory.Store
	uow       *memory.UnitOfWork
	publisher *capturePublisher
	docs      *memDocStore

	register    *command.RegisterTraineeHandler
	markSel     *command.MarkSelectedHandler
	sendFee     *command.SendFeeChallanHandler
	submitFee   *command.SubmitFeeTicketHandler
	verifyFee   *command.VerifyFeeHandler
	createProj  *command.CreateProjectHandler
	requestProj *command.RequestProjectHandler
	approveProj *command.ApproveProjectHandler
	issueAdm    *command.IssueAdmissionHandler
	verifyCert  *command.VerifyCertificateHandler
	release     *command.ReleaseReservationHandler
}

func newEnv() *env {
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store)
	pub := &capturePublisher{}
	docs := newMemDocStore()
	idGen := uuidGen{}
	renderer := stubRenderer{}

	return &env{
		store:     store,
		uow:       uow,
		publisher: pub,
		docs:      docs,

		register:    command.NewRegisterTraineeHandler(uow, idGen, plainHasher{}, pub),
		markSel:     command.NewMarkSelectedHandler(uow, idGen, pub),
		sendFee:     command.NewSendFeeChallanHandler(uow, docs, pub, command.SendFeeChallanHandlerConfig{}),
		submitFee:   command.NewSubmitFeeTicketHandler(uow, pub),
		verifyFee:   command.NewVerifyFeeHandler(uow, pub),
		createProj:  command.NewCreateProjectHandler(store.Projects(), idGen),
		requestProj: command.NewRequestProjectHandler(uow, idGen, pub),
		approveProj: command.NewApproveProjectHandler(uow, idGen, pub),
		issueAdm:    command.NewIssueAdmissionHandler(uow, idGen, renderer, docs, pub),
		verifyCert:  command.NewVerifyCertificateHandler(uow, docs, pub),
		release:     command.NewReleaseReservationHandler(uow, pub),
	}
}

func (e *env) registerTrainee(t *testing.T, name string) string {
	t.Helper()

	res, err := e.register.Handle(context.Background(), command.RegisterTraineeCommand{
		Name:     name,
		Email:    name + "@example.com",
		Password: "trainee-pass-1",
		College:  "Govt Engineering College",
		Course:   "B.Tech",
		Branch:   "electrical",
	})
	require.NoError(t, err)
	return res.TraineeID
}

func (e *env) createProject(t *testing.T, title string, slots int) string {
	t.Helper()

	res, err := e.createProj.Handle(context.Background(), command.CreateProjectCommand{
		Title:         title,
		Branch:        "electrical",
		Supervisor:    "Er. Sharma",
		DurationWeeks: 4,
		StartDate:     time.Now().AddDate(0, 1, 0),
		EndDate:       time.Now().AddDate(0, 2, 0),
		TotalSlots:    slots,
	})
	require.NoError(t, err)
	return res.ProjectID
}

// advanceToFeeVerified walks a fresh trainee through selection and payment.
func (e *env) advanceToFeeVerified(t *testing.T, traineeID string) {
	t.Helper()
	ctx := context.Background()

	_, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: traineeID, SelectedBy: "admin"})
	require.NoError(t, err)
	_, err = e.sendFee.Handle(ctx, command.SendFeeChallanCommand{TraineeID: traineeID})
	require.NoError(t, err)
	_, err = e.verifyFee.Handle(ctx, command.VerifyFeeCommand{TraineeID: traineeID, VerifiedBy: "admin"})
	require.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle flow
// ─────────────────────────────────────────────────────────────────────────────

func TestLifecycleHappyPath(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	bucket := sequence.BucketFor(time.Now())

	traineeID := e.registerTrainee(t, "asha")
	projectID := e.createProject(t, "Substation Monitoring", 3)

	selRes, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: traineeID, SelectedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, sequence.Format(sequence.CategoryTraineeID, bucket, 1), selRes.PublicID)
	assert.Equal(t, trainee.StateSelected, selRes.State)
	assert.NotEmpty(t, selRes.FeeRecordID)

	feeRes, err := e.sendFee.Handle(ctx, command.SendFeeChallanCommand{TraineeID: traineeID})
	require.NoError(t, err)
	assert.Equal(t, trainee.StateFeeSent, feeRes.State)
	assert.False(t, feeRes.SentAt.IsZero())
	assert.Equal(t, e.docs.Ref(traineeID, document.KindChallan), feeRes.ChallanRef)

	_, err = e.submitFee.Handle(ctx, command.SubmitFeeTicketCommand{TraineeID: traineeID, TicketNumber: "TKT-9001"})
	require.NoError(t, err)

	verRes, err := e.verifyFee.Handle(ctx, command.VerifyFeeCommand{TraineeID: traineeID, VerifiedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, trainee.StateFeeVerified, verRes.State)

	reqRes, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	assert.Equal(t, trainee.StateProjectRequested, reqRes.State)
	assert.Equal(t, 2, reqRes.RemainingSlots)

	appRes, err := e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, sequence.Format(sequence.CategoryCertificate, bucket, 1), appRes.CertificateSerial)
	assert.Equal(t, trainee.StateProjectApproved, appRes.State)

	admRes, err := e.issueAdm.Handle(ctx, command.IssueAdmissionCommand{TraineeID: traineeID})
	require.NoError(t, err)
	assert.False(t, admRes.AlreadyIssued)
	assert.Equal(t, trainee.StateAdmissionIssued, admRes.State)

	certRes, err := e.verifyCert.Handle(ctx, command.VerifyCertificateCommand{TraineeID: traineeID, VerifiedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, appRes.CertificateSerial, certRes.Serial)
	assert.Equal(t, trainee.StateCertificateVerified, certRes.State)

	assert.Equal(t, []shared.EventType{
		shared.EventTraineeRegistered,
		shared.EventTraineeSelected,
		shared.EventFeeSent,
		shared.EventFeeSubmitted,
		shared.EventFeeVerified,
		shared.EventProjectRequested,
		shared.EventProjectApproved,
		shared.EventAdmissionIssued,
		shared.EventCertificateVerified,
	}, e.publisher.types())
}

func TestOutOfOrderTransitionsRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "bilal")
	projectID := e.createProject(t, "Relay Testing", 2)

	// Fee verification straight after registration.
	_, err := e.verifyFee.Handle(ctx, command.VerifyFeeCommand{TraineeID: traineeID, VerifiedBy: "admin"})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidTransition(err))

	// Project request before any payment.
	_, err = e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidTransition(err))

	// Challan before selection.
	_, err = e.sendFee.Handle(ctx, command.SendFeeChallanCommand{TraineeID: traineeID})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidTransition(err))

	// The rejection names both states.
	var trErr *shared.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, trainee.StateSelected.String(), trErr.Expected)
	assert.Equal(t, trainee.StateRegistered.String(), trErr.Actual)
}

func TestMarkSelectedIsIdempotentOnIdentifier(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "chandra")

	first, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: traineeID, SelectedBy: "admin"})
	require.NoError(t, err)

	// Re-selecting an already selected trainee is rejected, and no second
	// identifier is consumed.
	_, err = e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: traineeID, SelectedBy: "admin"})
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyProcessed(err))

	stored, err := e.store.Trainees().GetByID(ctx, traineeID)
	require.NoError(t, err)
	assert.Equal(t, first.PublicID, stored.PublicID)

	next := e.registerTrainee(t, "deepa")
	second, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: next, SelectedBy: "admin"})
	require.NoError(t, err)
	bucket := sequence.BucketFor(time.Now())
	assert.Equal(t, sequence.Format(sequence.CategoryTraineeID, bucket, 2), second.PublicID)
}

func TestRequestProjectRejectsSecondSelection(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "esha")
	first := e.createProject(t, "Line Survey", 2)
	second := e.createProject(t, "Panel Wiring", 2)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: first})
	require.NoError(t, err)

	// A second request is AlreadySelected regardless of the target project.
	_, err = e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: second})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadySelected)

	_, err = e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: first})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadySelected)
}

func TestApproveProjectTwiceRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "farid")
	projectID := e.createProject(t, "Motor Rewinding", 1)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)

	first, err := e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)

	_, err = e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyProcessed(err))

	// The serial assigned by the first approval stands.
	cert, err := e.store.Enrollment().GetCertificateByTrainee(ctx, traineeID)
	require.NoError(t, err)
	assert.Equal(t, first.CertificateSerial, cert.Serial)
}

// ─────────────────────────────────────────────────────────────────────────────
// Concurrency properties
// ─────────────────────────────────────────────────────────────────────────────

func TestLastSlotRaceHasExactlyOneWinnerPerSlot(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	const slots = 3
	const contenders = slots + 2

	projectID := e.createProject(t, "Feeder Automation", slots)

	ids := make([]string, contenders)
	for i := range ids {
		ids[i] = e.registerTrainee(t, fmt.Sprintf("racer%02d", i))
		e.advanceToFeeVerified(t, ids[i])
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.requestProj.Handle(ctx, command.RequestProjectCommand{
				TraineeID: ids[i],
				ProjectID: projectID,
			})
		}(i)
	}
	wg.Wait()

	var won, full int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case shared.IsCapacityFull(err):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, slots, won, "exactly one winner per slot")
	assert.Equal(t, contenders-slots, full, "losers get the capacity rejection")

	p, err := e.store.Projects().GetByID(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, slots, p.TakenSlots, "occupancy never exceeds capacity")
}

func TestConcurrentSelectionYieldsDistinctSequentialIDs(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	const n = 20

	ids := make([]string, n)
	for i := range ids {
		ids[i] = e.registerTrainee(t, fmt.Sprintf("batch%02d", i))
	}

	var wg sync.WaitGroup
	results := make([]sequence.Identifier, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: ids[i], SelectedBy: "admin"})
			if err == nil {
				results[i] = res.PublicID
			}
		}(i)
	}
	wg.Wait()

	// Every identifier 1..n appears exactly once; no duplicates, no gaps.
	bucket := sequence.BucketFor(time.Now())
	want := make(map[sequence.Identifier]bool, n)
	for seq := 1; seq <= n; seq++ {
		want[sequence.Format(sequence.CategoryTraineeID, bucket, seq)] = false
	}
	for _, id := range results {
		seen, ok := want[id]
		require.True(t, ok, "unexpected identifier %s", id)
		require.False(t, seen, "duplicate identifier %s", id)
		want[id] = true
	}
}

func TestIssueAdmissionIsGetOrCreate(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "gita")
	projectID := e.createProject(t, "Tower Earthing", 1)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	_, err = e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)

	first, err := e.issueAdm.Handle(ctx, command.IssueAdmissionCommand{TraineeID: traineeID})
	require.NoError(t, err)
	assert.False(t, first.AlreadyIssued)

	putsAfterFirst := e.docs.puts

	second, err := e.issueAdm.Handle(ctx, command.IssueAdmissionCommand{TraineeID: traineeID})
	require.NoError(t, err)
	assert.True(t, second.AlreadyIssued)
	assert.Equal(t, first.AdmissionID, second.AdmissionID)
	assert.Equal(t, first.AdmitCardRef, second.AdmitCardRef)
	assert.Equal(t, putsAfterFirst, e.docs.puts, "no duplicate artifact stored")
}

// ─────────────────────────────────────────────────────────────────────────────
// Document store outage
// ─────────────────────────────────────────────────────────────────────────────

// outageDocStore addresses artifacts but refuses every read and write.
type outageDocStore struct{}

func (outageDocStore) Ref(ownerID string, kind document.ArtifactKind) document.ArtifactRef {
	return document.ArtifactRef(ownerID + "/" + kind.String())
}

func (outageDocStore) Put(ctx context.Context, ownerID string, kind document.ArtifactKind, data []byte, getOrCreate bool) (document.ArtifactRef, error) {
	return "", document.ErrStoreFailed
}

func (outageDocStore) Get(ctx context.Context, ref document.ArtifactRef) ([]byte, error) {
	return nil, document.ErrStoreFailed
}

func TestChallanDispatchSurvivesDocumentStoreOutage(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "nanda")
	_, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: traineeID, SelectedBy: "admin"})
	require.NoError(t, err)

	sendFee := command.NewSendFeeChallanHandler(e.uow, outageDocStore{}, e.publisher, command.SendFeeChallanHandlerConfig{})

	// The transition commits; only the post-commit rendering would fail.
	res, err := sendFee.Handle(ctx, command.SendFeeChallanCommand{TraineeID: traineeID})
	require.NoError(t, err)
	assert.Equal(t, trainee.StateFeeSent, res.State)

	fee, err := e.store.Enrollment().GetFeeRecordByTrainee(ctx, traineeID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.FeeStatusSent, fee.Status)
	assert.Equal(t, res.ChallanRef.String(), fee.ChallanRef)
}

func TestCertificateVerifySurvivesDocumentStoreOutage(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "omprakash")
	projectID := e.createProject(t, "Transformer Testing", 1)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	_, err = e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)
	_, err = e.issueAdm.Handle(ctx, command.IssueAdmissionCommand{TraineeID: traineeID})
	require.NoError(t, err)

	verifyCert := command.NewVerifyCertificateHandler(e.uow, outageDocStore{}, e.publisher)

	res, err := verifyCert.Handle(ctx, command.VerifyCertificateCommand{TraineeID: traineeID, VerifiedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, trainee.StateCertificateVerified, res.State)

	cert, err := e.store.Enrollment().GetCertificateByTrainee(ctx, traineeID)
	require.NoError(t, err)
	assert.True(t, cert.Verified)
	assert.Equal(t, res.CertificateRef.String(), cert.ArtifactRef)
}

func TestAdmissionIssuanceBlockedByDocumentStoreOutage(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "padma")
	projectID := e.createProject(t, "Capacitor Bank Sizing", 1)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	_, err = e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)

	issueAdm := command.NewIssueAdmissionHandler(e.uow, uuidGen{}, stubRenderer{}, outageDocStore{}, e.publisher)

	// The admit card is written inside the transaction: get-or-create
	// semantics hand out the stored card, so the card must exist before
	// the admission row does. The whole issuance rolls back.
	_, err = issueAdm.Handle(ctx, command.IssueAdmissionCommand{TraineeID: traineeID})
	require.Error(t, err)

	_, err = e.store.Enrollment().GetAdmissionByTrainee(ctx, traineeID)
	assert.True(t, shared.IsNotFound(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Release
// ─────────────────────────────────────────────────────────────────────────────

func TestReleaseReservationReturnsSlot(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "hari")
	projectID := e.createProject(t, "Cable Fault Location", 1)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)

	relRes, err := e.release.Handle(ctx, command.ReleaseReservationCommand{TraineeID: traineeID, ReleasedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, relRes.RemainingSlots)
	assert.Equal(t, trainee.StateFeeVerified, relRes.State)

	// The trainee can pick again.
	_, err = e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
}

func TestReleaseAfterApprovalKeepsSerial(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "indu")
	projectID := e.createProject(t, "Load Flow Study", 2)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	first, err := e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)

	_, err = e.release.Handle(ctx, command.ReleaseReservationCommand{TraineeID: traineeID, ReleasedBy: "admin"})
	require.NoError(t, err)

	// A re-approval after picking again reuses the serial already assigned
	// to this trainee; the counter does not advance twice.
	_, err = e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	again, err := e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, first.CertificateSerial, again.CertificateSerial)
}

func TestReleaseRejectedAfterAdmission(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	traineeID := e.registerTrainee(t, "jaya")
	projectID := e.createProject(t, "Busbar Protection", 1)
	e.advanceToFeeVerified(t, traineeID)

	_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: traineeID, ProjectID: projectID})
	require.NoError(t, err)
	_, err = e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: traineeID, ApprovedBy: "admin"})
	require.NoError(t, err)
	_, err = e.issueAdm.Handle(ctx, command.IssueAdmissionCommand{TraineeID: traineeID})
	require.NoError(t, err)

	_, err = e.release.Handle(ctx, command.ReleaseReservationCommand{TraineeID: traineeID, ReleasedBy: "admin"})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidTransition(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Serial ordering
// ─────────────────────────────────────────────────────────────────────────────

func TestSerialsFollowApprovalOrder(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	bucket := sequence.BucketFor(time.Now())

	projectID := e.createProject(t, "Grid Synchronization", 5)

	var ids []string
	for _, name := range []string{"kiran", "lata", "mohan"} {
		id := e.registerTrainee(t, name)
		e.advanceToFeeVerified(t, id)
		_, err := e.requestProj.Handle(ctx, command.RequestProjectCommand{TraineeID: id, ProjectID: projectID})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Approvals land in reverse request order; serials follow approvals.
	for i := len(ids) - 1; i >= 0; i-- {
		res, err := e.approveProj.Handle(ctx, command.ApproveProjectCommand{TraineeID: ids[i], ApprovedBy: "admin"})
		require.NoError(t, err)
		want := sequence.Format(sequence.CategoryCertificate, bucket, len(ids)-i)
		assert.Equal(t, want, res.CertificateSerial)
	}
}

func TestUnknownTraineeGetsNotFound(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.markSel.Handle(ctx, command.MarkSelectedCommand{TraineeID: uuid.NewString(), SelectedBy: "admin"})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

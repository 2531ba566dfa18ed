// Package http exposes the REST API for the STVT Training Hub.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/stvt-hub/stvt-training-hub/internal/application/command"
	"github.com/stvt-hub/stvt-training-hub/internal/application/query"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
	"github.com/stvt-hub/stvt-training-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "STVT Training Hub API",
		"version":     "v1",
		"description": "REST API for the STVT trainee enrollment lifecycle",
		"endpoints": map[string]string{
			"health":   "/health",
			"register": "/api/v1/trainees",
			"projects": "/api/v1/projects",
			"registry": "/api/v1/registry/certificates",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// TRAINEE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerTraineeRequest struct {
	Name       string `json:"name"`
	FatherName string `json:"father_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	College    string `json:"college"`
	Course     string `json:"course"`
	Branch     string `json:"branch"`
	Address    string `json:"address"`
	Mobile     string `json:"mobile,omitempty"`
	PhotoRef   string `json:"photo_ref,omitempty"`
	LORRef     string `json:"lor_ref,omitempty"`
}

// handleRegisterTrainee handles POST /api/v1/trainees
func (s *Server) handleRegisterTrainee(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterTraineeHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req registerTraineeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.RegisterTraineeCommand{
		Name:       req.Name,
		FatherName: req.FatherName,
		Email:      req.Email,
		Password:   req.Password,
		College:    req.College,
		Course:     req.Course,
		Branch:     req.Branch,
		Address:    req.Address,
		Mobile:     req.Mobile,
		PhotoRef:   req.PhotoRef,
		LORRef:     req.LORRef,
	}

	result, err := s.deps.RegisterTraineeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to register trainee", logger.Err(err), logger.Email(req.Email))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetDashboard handles GET /api/v1/trainees/{id}/dashboard
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.GetDashboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Dashboard handler not configured")
		return
	}

	q := query.GetDashboardQuery{TraineeID: traineeID}

	result, err := s.deps.GetDashboardHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get dashboard", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type submitFeeTicketRequest struct {
	TicketNumber string `json:"ticket_number"`
}

// handleSubmitFeeTicket handles POST /api/v1/trainees/{id}/fee/ticket
func (s *Server) handleSubmitFeeTicket(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.SubmitFeeTicketHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Fee ticket handler not configured")
		return
	}

	var req submitFeeTicketRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.SubmitFeeTicketCommand{
		TraineeID:    traineeID,
		TicketNumber: req.TicketNumber,
	}

	result, err := s.deps.SubmitFeeTicketHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to submit fee ticket", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type requestProjectRequest struct {
	ProjectID string `json:"project_id"`
}

// handleRequestProject handles POST /api/v1/trainees/{id}/project-request
func (s *Server) handleRequestProject(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.RequestProjectHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Project request handler not configured")
		return
	}

	var req requestProjectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.RequestProjectCommand{
		TraineeID: traineeID,
		ProjectID: req.ProjectID,
	}

	result, err := s.deps.RequestProjectHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to request project", logger.Err(err),
			logger.TraineeID(traineeID), logger.ProjectID(req.ProjectID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT LISTING HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleListAvailableProjects handles GET /api/v1/projects
func (s *Server) handleListAvailableProjects(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListAvailableProjectsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Project listing handler not configured")
		return
	}

	q := query.ListAvailableProjectsQuery{
		Branch:      getQueryParam(r, "branch", ""),
		BypassCache: getQueryParamBool(r, "fresh"),
	}

	result, err := s.deps.ListAvailableProjectsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to list projects", logger.Err(err), logger.BranchName(q.Branch))
		s.writeDomainError(w, err)
		return
	}

	meta := &ResponseMeta{TotalCount: len(result.Projects)}
	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATE REGISTRY HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleListVerifiedCertificates handles GET /api/v1/registry/certificates
func (s *Server) handleListVerifiedCertificates(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListVerifiedCertificatesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registry handler not configured")
		return
	}

	q := query.ListVerifiedCertificatesQuery{
		Serial: getQueryParam(r, "serial", ""),
	}

	result, err := s.deps.ListVerifiedCertificatesHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to list certificates", logger.Err(err), logger.Serial(q.Serial))
		s.writeDomainError(w, err)
		return
	}

	meta := &ResponseMeta{TotalCount: result.TotalCount}
	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// handleExportCertificates handles GET /api/v1/admin/certificates/export.
// Streams every verified certificate artifact as one zip archive; an
// optional "serials" parameter (comma-separated) narrows the export.
func (s *Server) handleExportCertificates(w http.ResponseWriter, r *http.Request) {
	if s.deps.ExportCertificatesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Export handler not configured")
		return
	}

	q := query.ExportCertificatesQuery{}
	if raw := getQueryParam(r, "serials", ""); raw != "" {
		q.Serials = strings.Split(raw, ",")
	}

	var buf bytes.Buffer
	result, err := s.deps.ExportCertificatesHandler.Handle(r.Context(), q, &buf)
	if err != nil {
		s.logger.Error("failed to export certificates", logger.Err(err))
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("certificates exported",
		logger.Int("exported", result.Exported),
		logger.Int("skipped", result.Skipped),
	)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="certificates.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMINISTRATIVE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type adminActionRequest struct {
	// Actor is the administrator performing the lifecycle action.
	Actor string `json:"actor"`
}

// handleMarkSelected handles POST /api/v1/admin/trainees/{id}/select
func (s *Server) handleMarkSelected(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.MarkSelectedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Selection handler not configured")
		return
	}

	var req adminActionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.MarkSelectedCommand{
		TraineeID:  traineeID,
		SelectedBy: req.Actor,
	}

	result, err := s.deps.MarkSelectedHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to mark selected", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSendFeeChallan handles POST /api/v1/admin/trainees/{id}/fee/challan
func (s *Server) handleSendFeeChallan(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.SendFeeChallanHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Challan handler not configured")
		return
	}

	cmd := command.SendFeeChallanCommand{TraineeID: traineeID}

	result, err := s.deps.SendFeeChallanHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to send fee challan", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleVerifyFee handles POST /api/v1/admin/trainees/{id}/fee/verify
func (s *Server) handleVerifyFee(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.VerifyFeeHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Fee verification handler not configured")
		return
	}

	var req adminActionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.VerifyFeeCommand{
		TraineeID:  traineeID,
		VerifiedBy: req.Actor,
	}

	result, err := s.deps.VerifyFeeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to verify fee", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleApproveProject handles POST /api/v1/admin/trainees/{id}/project/approve
func (s *Server) handleApproveProject(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.ApproveProjectHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Approval handler not configured")
		return
	}

	var req adminActionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.ApproveProjectCommand{
		TraineeID:  traineeID,
		ApprovedBy: req.Actor,
	}

	result, err := s.deps.ApproveProjectHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to approve project", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleIssueAdmission handles POST /api/v1/admin/trainees/{id}/admission
func (s *Server) handleIssueAdmission(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.IssueAdmissionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Admission handler not configured")
		return
	}

	cmd := command.IssueAdmissionCommand{TraineeID: traineeID}

	result, err := s.deps.IssueAdmissionHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to issue admission", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	// Re-issuing returns the existing admit card, not a new resource.
	status := http.StatusCreated
	if result.AlreadyIssued {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// handleVerifyCertificate handles POST /api/v1/admin/trainees/{id}/certificate/verify
func (s *Server) handleVerifyCertificate(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.VerifyCertificateHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Certificate handler not configured")
		return
	}

	var req adminActionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.VerifyCertificateCommand{
		TraineeID:  traineeID,
		VerifiedBy: req.Actor,
	}

	result, err := s.deps.VerifyCertificateHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to verify certificate", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleReleaseReservation handles POST /api/v1/admin/trainees/{id}/release
func (s *Server) handleReleaseReservation(w http.ResponseWriter, r *http.Request) {
	traineeID := r.PathValue("id")
	if traineeID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Trainee ID is required")
		return
	}

	if s.deps.ReleaseReservationHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Release handler not configured")
		return
	}

	var req adminActionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.ReleaseReservationCommand{
		TraineeID:  traineeID,
		ReleasedBy: req.Actor,
	}

	result, err := s.deps.ReleaseReservationHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to release reservation", logger.Err(err), logger.TraineeID(traineeID))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createProjectRequest struct {
	Title         string `json:"title"`
	Branch        string `json:"branch"`
	Supervisor    string `json:"supervisor"`
	DurationWeeks int    `json:"duration_weeks"`
	StartDate     string `json:"start_date"` // "2006-01-02", IST
	EndDate       string `json:"end_date"`
	TotalSlots    int    `json:"total_slots"`
}

// handleCreateProject handles POST /api/v1/admin/projects
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if s.deps.CreateProjectHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Project creation handler not configured")
		return
	}

	var req createProjectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	startDate, err := timeutil.ParseDateIST(req.StartDate)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "start_date must be in YYYY-MM-DD format")
		return
	}
	endDate, err := timeutil.ParseDateIST(req.EndDate)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "end_date must be in YYYY-MM-DD format")
		return
	}

	cmd := command.CreateProjectCommand{
		Title:         req.Title,
		Branch:        req.Branch,
		Supervisor:    req.Supervisor,
		DurationWeeks: req.DurationWeeks,
		StartDate:     startDate,
		EndDate:       endDate,
		TotalSlots:    req.TotalSlots,
	}

	result, err := s.deps.CreateProjectHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to create project", logger.Err(err), logger.BranchName(req.Branch))
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON reads and decodes a JSON request body. It writes the error
// response itself and returns false when decoding fails.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if len(body) == 0 {
		// Commands with no required fields accept an empty body.
		return true
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}
	return true
}

// writeDomainError maps a domain error to an HTTP status and error code.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsCapacityFull(err):
		writeJSONError(w, http.StatusConflict, "capacity_full", err.Error())
	case shared.IsAlreadyProcessed(err), errors.Is(err, shared.ErrAlreadySelected):
		writeJSONError(w, http.StatusConflict, "already_processed", err.Error())
	case shared.IsInvalidTransition(err):
		writeJSONError(w, http.StatusConflict, "invalid_transition", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case shared.IsGenerationFailed(err):
		writeJSONError(w, http.StatusServiceUnavailable, "id_generation_failed", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

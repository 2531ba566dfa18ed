package query

import (
	"context"
	"errors"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST AVAILABLE PROJECTS QUERY
// The project catalog a fee-verified trainee picks from. Availability is read
// through a short-TTL cache; occupancy shown here is advisory, the atomic
// reservation is the deciding check.
// ══════════════════════════════════════════════════════════════════════════════

// ProjectCache caches availability listings per branch.
type ProjectCache interface {
	// GetAvailable returns the cached listing, or a miss.
	GetAvailable(ctx context.Context, branch string) ([]*project.Project, bool, error)

	// SetAvailable stores the listing under a TTL.
	SetAvailable(ctx context.Context, branch string, projects []*project.Project) error

	// InvalidateAvailable drops the cached listing for a branch.
	InvalidateAvailable(ctx context.Context, branch string) error
}

// ListAvailableProjectsQuery contains the parameters of a catalog request.
type ListAvailableProjectsQuery struct {
	// Branch filters projects to the trainee's discipline.
	Branch string

	// BypassCache forces a fresh read, used right after administrative edits.
	BypassCache bool
}

// Validate validates the query.
func (q *ListAvailableProjectsQuery) Validate() error {
	if q.Branch == "" {
		return errors.New("branch is required")
	}
	return nil
}

// ProjectDTO is one catalog entry.
type ProjectDTO struct {
	ProjectID      string    `json:"project_id"`
	Title          string    `json:"title"`
	Supervisor     string    `json:"supervisor"`
	DurationWeeks  int       `json:"duration_weeks"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
}

// ListAvailableProjectsResult contains the catalog.
type ListAvailableProjectsResult struct {
	Branch      string       `json:"branch"`
	Projects    []ProjectDTO `json:"projects"`
	FromCache   bool         `json:"from_cache"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ListAvailableProjectsHandler handles catalog requests.
type ListAvailableProjectsHandler struct {
	projectRepo project.Repository
	cache       ProjectCache
}

// NewListAvailableProjectsHandler creates a new ListAvailableProjectsHandler.
// The cache may be nil; the handler then always reads fresh.
func NewListAvailableProjectsHandler(projectRepo project.Repository, cache ProjectCache) *ListAvailableProjectsHandler {
	return &ListAvailableProjectsHandler{
		projectRepo: projectRepo,
		cache:       cache,
	}
}

// Handle executes the catalog query.
func (h *ListAvailableProjectsHandler) Handle(ctx context.Context, q ListAvailableProjectsQuery) (*ListAvailableProjectsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &ListAvailableProjectsResult{
		Branch:      q.Branch,
		GeneratedAt: time.Now().UTC(),
	}

	if h.cache != nil && !q.BypassCache {
		if cached, hit, err := h.cache.GetAvailable(ctx, q.Branch); err == nil && hit {
			result.Projects = toProjectDTOs(cached)
			result.FromCache = true
			return result, nil
		}
		// Cache trouble is not a read failure; fall through to the source.
	}

	projects, err := h.projectRepo.ListAvailable(ctx, trainee.Branch(q.Branch))
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.SetAvailable(ctx, q.Branch, projects)
	}

	result.Projects = toProjectDTOs(projects)
	return result, nil
}

func toProjectDTOs(projects []*project.Project) []ProjectDTO {
	out := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectDTO{
			ProjectID:      p.ID,
			Title:          p.Title,
			Supervisor:     p.Supervisor,
			DurationWeeks:  p.DurationWeeks,
			StartDate:      p.StartDate,
			EndDate:        p.EndDate,
			TotalSlots:     p.TotalSlots,
			AvailableSlots: p.AvailableSlots(),
		})
	}
	return out
}

package query

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT CERTIFICATES QUERY
// Administrative bulk download: every verified certificate artifact in one
// zip archive. Records whose artifact has not been rendered yet are counted
// and skipped, never failing the whole export.
// ══════════════════════════════════════════════════════════════════════════════

// ExportCertificatesQuery contains the parameters of a bulk export.
type ExportCertificatesQuery struct {
	// Serials narrows the export to the listed serials (exact,
	// case-insensitive). Empty exports everything verified.
	Serials []string
}

// ExportCertificatesResult describes what went into the archive.
type ExportCertificatesResult struct {
	// Exported is the number of artifacts written to the archive.
	Exported int

	// Skipped counts verified certificates whose artifact was not
	// retrievable (typically not rendered yet).
	Skipped int

	// GeneratedAt is when the archive was produced.
	GeneratedAt time.Time
}

// ExportCertificatesHandler handles bulk export requests.
type ExportCertificatesHandler struct {
	enrollmentRepo enrollment.Repository
	documents      document.Store
}

// NewExportCertificatesHandler creates a new handler.
func NewExportCertificatesHandler(
	enrollmentRepo enrollment.Repository,
	documents document.Store,
) *ExportCertificatesHandler {
	return &ExportCertificatesHandler{
		enrollmentRepo: enrollmentRepo,
		documents:      documents,
	}
}

// Handle writes a zip archive of the selected certificate artifacts to w.
// Entries are named after the serial with the slash flattened, e.g.
// "CERT26-01.txt".
func (h *ExportCertificatesHandler) Handle(ctx context.Context, q ExportCertificatesQuery, w io.Writer) (*ExportCertificatesResult, error) {
	certs, err := h.enrollmentRepo.ListVerifiedCertificates(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(q.Serials))
	for _, s := range q.Serials {
		if s = strings.TrimSpace(s); s != "" {
			wanted[strings.ToUpper(s)] = true
		}
	}

	result := &ExportCertificatesResult{GeneratedAt: time.Now().UTC()}
	archive := zip.NewWriter(w)

	for _, cert := range certs {
		serial := cert.Serial.String()
		if len(wanted) > 0 && !wanted[strings.ToUpper(serial)] {
			continue
		}

		data, err := h.documents.Get(ctx, document.ArtifactRef(cert.ArtifactRef))
		if err != nil {
			result.Skipped++
			continue
		}

		entry, err := archive.Create(strings.ReplaceAll(serial, "/", "-") + ".txt")
		if err != nil {
			return nil, fmt.Errorf("create archive entry for %s: %w", serial, err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("write archive entry for %s: %w", serial, err)
		}
		result.Exported++
	}

	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return result, nil
}

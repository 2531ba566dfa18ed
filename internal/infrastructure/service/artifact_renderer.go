package service

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
)

// TemplateRenderer implements command.ArtifactRenderer with text templates.
// Artifacts are rendered as plain text; a PDF layout engine can replace this
// without touching the workflow, which only stores the returned bytes.
type TemplateRenderer struct {
	challan     *template.Template
	admitCard   *template.Template
	certificate *template.Template
}

const challanTemplate = `STVT TRAINING HUB - FEE CHALLAN
================================
Identifier : {{.PublicID}}
Name       : {{.TraineeName}}
Branch     : {{.Branch}}
College    : {{.College}}
Amount     : Rs. {{.Amount}}
Date       : {{.Date.Format "02-01-2006"}}
`

const admitCardTemplate = `STVT TRAINING HUB - ADMIT CARD
================================
Identifier : {{.PublicID}}
Name       : {{.TraineeName}}
Father     : {{.FatherName}}
Branch     : {{.Branch}}
College    : {{.College}}
Address    : {{.Address}}
Mobile     : {{.Mobile}}
Project    : {{.ProjectTitle}}
Supervisor : {{.Supervisor}}
Valid      : {{.ValidFrom.Format "02-01-2006"}} to {{.ValidTo.Format "02-01-2006"}}
Photo      : {{.PhotoRef}}
`

const certificateTemplate = `STVT TRAINING HUB - CERTIFICATE OF COMPLETION
==============================================
Serial     : {{.Serial}}
Identifier : {{.PublicID}}

This certifies that {{.TraineeName}}, child of {{.FatherName}},
has completed the {{.DurationWeeks}}-week project "{{.ProjectTitle}}"
in the {{.Branch}} branch under the supervision of {{.Supervisor}},
from {{.StartDate.Format "02-01-2006"}} to {{.EndDate.Format "02-01-2006"}}.

Issued on {{.IssuedOn.Format "02-01-2006"}}.
`

// NewTemplateRenderer creates a renderer with the built-in templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	challan, err := template.New("challan").Parse(challanTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse challan template: %w", err)
	}
	admitCard, err := template.New("admit_card").Parse(admitCardTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse admit card template: %w", err)
	}
	certificate, err := template.New("certificate").Parse(certificateTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse certificate template: %w", err)
	}

	return &TemplateRenderer{
		challan:     challan,
		admitCard:   admitCard,
		certificate: certificate,
	}, nil
}

// RenderChallan renders the fee challan.
func (r *TemplateRenderer) RenderChallan(view document.ChallanView) ([]byte, error) {
	return execute(r.challan, view)
}

// RenderAdmitCard renders the admit card.
func (r *TemplateRenderer) RenderAdmitCard(view document.AdmitCardView) ([]byte, error) {
	return execute(r.admitCard, view)
}

// RenderCertificate renders the completion certificate.
func (r *TemplateRenderer) RenderCertificate(view document.CertificateView) ([]byte, error) {
	return execute(r.certificate, view)
}

func execute(tmpl *template.Template, view interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

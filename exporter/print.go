package exporter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"tenderpack-backend/assembler"
	"tenderpack-backend/models"
)

//go:embed templates/*.tmpl
var layoutFS embed.FS

var printLayout = template.Must(template.New("print").ParseFS(layoutFS, "templates/print.html.tmpl"))

// ViewMode selects the sections of a print document.
type ViewMode string

const (
	ViewFull      ViewMode = "full"
	ViewChecklist ViewMode = "checklist"
	ViewAnnexures ViewMode = "annexures"
	ViewTemplates ViewMode = "templates"
)

// ParseViewMode maps s to a view mode, falling back to ViewFull.
func ParseViewMode(s string) ViewMode {
	switch v := ViewMode(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewChecklist, ViewAnnexures, ViewTemplates:
		return v
	default:
		return ViewFull
	}
}

// Density controls print spacing.
type Density string

const (
	DensityNormal  Density = "normal"
	DensityCompact Density = "compact"
	DensityDense   Density = "dense"
)

// ParseDensity maps s to a density, falling back to DensityNormal.
func ParseDensity(s string) Density {
	switch d := Density(strings.ToLower(strings.TrimSpace(s))); d {
	case DensityCompact, DensityDense:
		return d
	default:
		return DensityNormal
	}
}

// PrintInput is everything a print document is composed from.
type PrintInput struct {
	Pack       models.Pack
	Profile    models.ContractorProfile
	Vault      models.VaultIndex
	View       ViewMode
	Density    Density
	Letterhead bool
	// TemplateHTML holds the stored output of generated templates by tplId.
	// Templates without an entry print their name and missing fields only.
	TemplateHTML map[string]string
}

type firmHeader struct {
	Name    string
	Address string
	Contact string
	GSTIN   string
}

type checklistRow struct {
	No       int
	Title    string
	Required bool
	Status   string
	Source   string
	Document string
}

type printSection struct {
	Title   string
	Body    template.HTML
	Missing []string
}

type printView struct {
	Title         string
	TenderNo      string
	Department    string
	Density       Density
	GeneratedAt   string
	Letterhead    template.HTML
	Firm          *firmHeader
	ShowChecklist bool
	ShowAnnexures bool
	ShowTemplates bool
	Checklist     []checklistRow
	Annexures     []printSection
	Templates     []printSection
	Missing       []string
	MissingItems  int
}

var (
	documentPolicyOnce sync.Once
	documentPolicy     *bluemonday.Policy
)

func documentSanitizer() *bluemonday.Policy {
	documentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		documentPolicy = policy
	})
	return documentPolicy
}

// sanitizeDocument keeps document markup such as tables and headings and
// drops scripts, handlers and unsafe URLs.
func sanitizeDocument(raw string) template.HTML {
	return template.HTML(documentSanitizer().Sanitize(raw))
}

// PrintHTML composes one print document for the pack. It does not modify
// the pack.
func (e *Exporter) PrintHTML(in PrintInput) (string, error) {
	view := e.printView(in)
	var buf bytes.Buffer
	if err := printLayout.ExecuteTemplate(&buf, "print.html.tmpl", view); err != nil {
		return "", fmt.Errorf("failed to render print document: %w", err)
	}
	return buf.String(), nil
}

func (e *Exporter) printView(in PrintInput) printView {
	p := in.Pack
	mode := ParseViewMode(string(in.View))
	v := printView{
		Title:         p.Title,
		TenderNo:      p.TenderNo,
		Department:    p.Department,
		Density:       ParseDensity(string(in.Density)),
		GeneratedAt:   e.now().Format("02 Jan 2006"),
		ShowChecklist: mode == ViewFull || mode == ViewChecklist,
		ShowAnnexures: mode == ViewFull || mode == ViewAnnexures,
		ShowTemplates: mode == ViewFull || mode == ViewTemplates,
	}

	if in.Letterhead {
		if strings.TrimSpace(in.Profile.LetterheadHTML) != "" {
			v.Letterhead = sanitizeDocument(in.Profile.LetterheadHTML)
		}
		if v.Letterhead == "" && in.Profile.FirmName != "" {
			v.Firm = &firmHeader{
				Name:    in.Profile.FirmName,
				Address: joinNonEmpty(", ", in.Profile.Address, in.Profile.City, in.Profile.State, in.Profile.Pincode),
				Contact: joinNonEmpty(" | ", in.Profile.Phone, in.Profile.Email),
				GSTIN:   in.Profile.GSTIN,
			}
		}
	}

	missing := newMissingSet()
	if v.ShowChecklist {
		plan := assembler.PlanAttachments(p, in.Vault)
		for i, item := range p.Checklist {
			row := checklistRow{
				No:       i + 1,
				Title:    item.Title,
				Required: item.Required,
				Status:   string(item.Status),
				Source:   string(plan[i].Source),
			}
			row.Document = e.documentLabel(p, plan[i], in.Vault)
			v.Checklist = append(v.Checklist, row)
		}
		v.MissingItems = len(assembler.MissingItems(p, in.Vault))
	}
	if v.ShowAnnexures {
		for _, d := range p.GeneratedAnnexures {
			v.Annexures = append(v.Annexures, printSection{
				Title:   d.Title,
				Body:    sanitizeDocument(d.RenderedHTML),
				Missing: d.MissingFields,
			})
			missing.add(d.MissingFields...)
		}
		for _, d := range p.GeneratedDocs {
			v.Annexures = append(v.Annexures, printSection{
				Title:   d.Title,
				Body:    sanitizeDocument(d.RenderedHTML),
				Missing: d.MissingFields,
			})
			missing.add(d.MissingFields...)
		}
	}
	if v.ShowTemplates {
		for _, t := range p.GeneratedTemplates {
			v.Templates = append(v.Templates, printSection{
				Title:   t.Name,
				Body:    sanitizeDocument(in.TemplateHTML[t.TplID]),
				Missing: t.MissingFields,
			})
			missing.add(t.MissingFields...)
		}
	}
	v.Missing = missing.list
	return v
}

func (e *Exporter) documentLabel(p models.Pack, entry models.AttachmentPlanEntry, vault models.VaultIndex) string {
	switch entry.Source {
	case models.AttachUpload:
		if i := p.ItemIndex(entry.ItemID); i >= 0 && len(p.Items[i].FileRefs) > 0 {
			return memberName(p.Items[i].FileRefs[0].Name, p.Items[i].FileRefs[0].Path)
		}
	case models.AttachVault:
		if f, ok := vault.Live(entry.Ref); ok {
			return f.Title
		}
	case models.AttachGenerated:
		return "Generated document"
	}
	return ""
}

type missingSet struct {
	seen map[string]bool
	list []string
}

func newMissingSet() *missingSet {
	return &missingSet{seen: make(map[string]bool), list: []string{}}
}

func (m *missingSet) add(keys ...string) {
	for _, k := range keys {
		canon := strings.ToLower(k)
		if m.seen[canon] {
			continue
		}
		m.seen[canon] = true
		m.list = append(m.list, k)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}

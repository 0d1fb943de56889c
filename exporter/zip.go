package exporter

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"tenderpack-backend/models"
)

// IndexName is the archive member holding the print document.
const IndexName = "pack_index.html"

// ExportInput is everything an archive is built from.
type ExportInput struct {
	Pack    models.Pack
	Profile models.ContractorProfile
	Vault   models.VaultIndex
	Density Density

	// TemplateHTML holds rendered generated-template bodies by TplID for
	// the archive index, as in PrintInput.
	TemplateHTML map[string]string
}

// SkippedMember is a candidate file left out of an archive.
type SkippedMember struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// ExportReport lists what an archive contains and what was left out.
type ExportReport struct {
	Included []string        `json:"included"`
	Skipped  []SkippedMember `json:"skipped"`
}

type member struct {
	folder string
	name   string
	ref    string // stored path, opened through the owned reader
	inline string // content that needs no storage access
}

// ExportZip writes a ZIP bundle of the pack to w. The archive is staged in
// a private temporary file that is removed on every return path. Missing
// and unsafe member files are skipped and reported; failures creating the
// archive itself are returned as *ArchiveCreateError.
func (e *Exporter) ExportZip(ctx context.Context, in ExportInput, w io.Writer) (*ExportReport, error) {
	p := in.Pack
	index, err := e.PrintHTML(PrintInput{
		Pack:         p,
		Profile:      in.Profile,
		Vault:        in.Vault,
		View:         ViewFull,
		Density:      in.Density,
		Letterhead:   true,
		TemplateHTML: in.TemplateHTML,
	})
	if err != nil {
		return nil, &ArchiveCreateError{Op: "render index", Err: err}
	}

	tmp, err := os.CreateTemp(e.tempDir, "pack-export-*.zip")
	if err != nil {
		return nil, &ArchiveCreateError{Op: "create temp file", Err: err}
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	report := &ExportReport{Included: []string{}, Skipped: []SkippedMember{}}
	zw := zip.NewWriter(tmp)
	names := newNameSet()

	if err := writeMember(zw, names.claim("", IndexName), strings.NewReader(index)); err != nil {
		return nil, &ArchiveCreateError{Op: "write index", Err: err}
	}
	report.Included = append(report.Included, IndexName)

	for _, m := range collectMembers(p, in.Vault) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var src io.Reader
		var closer io.Closer
		if m.ref == "" {
			src = strings.NewReader(m.inline)
		} else {
			rc, err := e.files.OpenOwned(ctx, p.YojID, m.ref)
			if err != nil {
				reason := "missing"
				if errors.Is(err, ErrUnsafePathRejected) {
					reason = "unsafe"
				}
				e.logger.Debug("export member skipped",
					zap.String("pack_id", p.ID.String()),
					zap.String("ref", m.ref),
					zap.String("reason", reason),
					zap.Error(err))
				report.Skipped = append(report.Skipped, SkippedMember{Ref: m.ref, Reason: reason})
				continue
			}
			src, closer = rc, rc
		}

		name := names.claim(m.folder, m.name)
		err := writeMember(zw, name, src)
		if closer != nil {
			closer.Close()
		}
		if err != nil {
			return nil, &ArchiveCreateError{Op: "write " + name, Err: err}
		}
		report.Included = append(report.Included, name)
	}

	if err := zw.Close(); err != nil {
		return nil, &ArchiveCreateError{Op: "finalize archive", Err: err}
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, &ArchiveCreateError{Op: "rewind archive", Err: err}
	}
	if _, err := io.Copy(w, tmp); err != nil {
		return nil, fmt.Errorf("failed to stream archive: %w", err)
	}

	e.logger.Info("pack exported",
		zap.String("pack_id", p.ID.String()),
		zap.Int("included", len(report.Included)),
		zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

// collectMembers lists archive candidates in a stable order: item uploads,
// mapped vault files, generated annexures and documents, then generated
// templates.
func collectMembers(p models.Pack, vault models.VaultIndex) []member {
	var out []member
	for _, item := range p.Items {
		folder := path.Join("items", sanitizeName(item.ItemID))
		for _, ref := range item.FileRefs {
			out = append(out, member{folder: folder, name: memberName(ref.Name, ref.Path), ref: ref.Path})
		}
	}
	for _, item := range p.Checklist {
		m, ok := p.VaultMappings[item.ItemID]
		if !ok {
			continue
		}
		f, ok := vault.Live(m.FileID)
		if !ok || f.StoragePath == "" {
			continue
		}
		out = append(out, member{
			folder: path.Join("vault", sanitizeName(item.ItemID)),
			name:   memberName(f.Filename, f.StoragePath),
			ref:    f.StoragePath,
		})
	}
	for _, docs := range [][]models.GeneratedDocument{p.GeneratedAnnexures, p.GeneratedDocs} {
		for _, d := range docs {
			m := member{folder: "generated", name: htmlName(d.Title, d.ID)}
			switch {
			case d.StoredPath != "":
				m.ref = d.StoredPath
			case d.RenderedHTML != "":
				m.inline = d.RenderedHTML
			default:
				continue
			}
			out = append(out, m)
		}
	}
	for _, t := range p.GeneratedTemplates {
		if t.StoredPath == "" {
			continue
		}
		out = append(out, member{folder: "templates", name: htmlName(t.Name, t.TplID), ref: t.StoredPath})
	}
	return out
}

func writeMember(zw *zip.Writer, name string, src io.Reader) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, src)
	return err
}

// memberName picks a display name, falling back to the last element of the
// stored path.
func memberName(name, storedPath string) string {
	if strings.TrimSpace(name) == "" {
		name = path.Base(strings.ReplaceAll(storedPath, "\\", "/"))
	}
	return sanitizeName(name)
}

func htmlName(title, id string) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = id
	}
	name := sanitizeName(base)
	if !strings.HasSuffix(strings.ToLower(name), ".html") {
		name += ".html"
	}
	return name
}

// sanitizeName strips directory separators and control characters so a
// member can never name a path outside its folder.
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, name)
	cleaned = strings.TrimLeft(strings.TrimSpace(cleaned), ".")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

// nameSet hands out unique archive paths, suffixing -2, -3, ... on clashes.
type nameSet map[string]bool

func newNameSet() nameSet { return make(nameSet) }

func (s nameSet) claim(folder, name string) string {
	candidate := path.Join(folder, name)
	if !s[candidate] {
		s[candidate] = true
		return candidate
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate = path.Join(folder, fmt.Sprintf("%s-%d%s", stem, n, ext))
		if !s[candidate] {
			s[candidate] = true
			return candidate
		}
	}
}

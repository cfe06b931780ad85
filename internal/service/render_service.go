package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/export"
)

// ReportFormat enumerates the renderer outputs.
type ReportFormat string

const (
	FormatRTF  ReportFormat = "rtf"
	FormatDOCX ReportFormat = "docx"
	FormatPDF  ReportFormat = "pdf"
	FormatHTML ReportFormat = "html"
)

// ParseReportFormat validates a format string.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(s)) {
	case FormatRTF:
		return FormatRTF, nil
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("formato não suportado: %s", s))
	}
}

// ContentType returns the MIME type served for the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/rtf"
	}
}

// Extension returns the filename extension. DOCX downloads carry .rtf:
// the payload is RTF and word processors open it by content.
func (f ReportFormat) Extension() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatHTML:
		return "html"
	default:
		return "rtf"
	}
}

type configurationProvider interface {
	Get(ctx context.Context, teacherID string) (*models.Configuration, error)
}

type templateProvider interface {
	Content(ctx context.Context, templateID, teacherID string) (string, error)
}

type reportStore interface {
	Save(name string, data []byte) error
}

// RenderedReport is the output of a render call.
type RenderedReport struct {
	Filename    string
	ContentType string
	Data        []byte
	Path        string
}

// RenderService turns a generated narrative into the final document.
type RenderService struct {
	students  studentStore
	configs   configurationProvider
	templates templateProvider
	reports   reportStore
	rtf       *export.RTFExporter
	pdf       *export.PDFExporter
	html      *export.HTMLExporter
	logger    *zap.Logger
}

func NewRenderService(students studentStore, configs configurationProvider, templates templateProvider, reports reportStore, logger *zap.Logger) *RenderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenderService{
		students:  students,
		configs:   configs,
		templates: templates,
		reports:   reports,
		rtf:       export.NewRTFExporter(),
		pdf:       export.NewPDFExporter(),
		html:      export.NewHTMLExporter(),
		logger:    logger,
	}
}

// Render produces the document, stores it in the reports bucket and
// completes the evaluation.
func (s *RenderService) Render(ctx context.Context, student *models.Student, format ReportFormat) (*RenderedReport, error) {
	if student.GeneratedNarrative == nil || *student.GeneratedNarrative == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "relatório ainda não gerado para este aluno")
	}

	data, templateContent, err := s.reportData(ctx, student)
	if err != nil {
		return nil, err
	}

	var rendered []byte
	switch {
	case format == FormatPDF:
		rendered, err = s.pdf.Render(data)
	case format == FormatHTML:
		rendered, err = s.html.Render(data)
	case templateContent != "":
		rendered = []byte(export.ApplyTemplate(templateContent, data))
	default:
		rendered = s.rtf.Render(data)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	filename := reportFilename(student, format)
	objectPath := path.Join(student.TeacherID, student.ID, filename)
	if err := s.reports.Save(objectPath, rendered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	params := repository.UpdateStudentParams{ProcessedFilePath: &objectPath}
	if student.Status == models.StatusCompleted {
		// re-rendering a completed evaluation only swaps the stored file
		if err := s.students.Update(ctx, student.ID, params); err != nil {
			return nil, fmt.Errorf("persist rendered report: %w", err)
		}
	} else if err := advance(ctx, s.students, student, models.StatusCompleted, params); err != nil {
		return nil, fmt.Errorf("persist rendered report: %w", err)
	}
	student.ProcessedFilePath = &objectPath

	return &RenderedReport{
		Filename:    filename,
		ContentType: format.ContentType(),
		Data:        rendered,
		Path:        objectPath,
	}, nil
}

// Preview renders the HTML view without persisting or changing state.
func (s *RenderService) Preview(ctx context.Context, student *models.Student) ([]byte, error) {
	narrative := ""
	if student.GeneratedNarrative != nil {
		narrative = *student.GeneratedNarrative
	}
	data, _, err := s.reportData(ctx, student)
	if err != nil {
		return nil, err
	}
	data.Narrative = narrative
	out, err := s.html.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return out, nil
}

func (s *RenderService) reportData(ctx context.Context, student *models.Student) (export.ReportData, string, error) {
	cfg, err := s.configs.Get(ctx, student.TeacherID)
	if err != nil {
		return export.ReportData{}, "", err
	}

	data := export.ReportData{
		Term:         student.Term,
		StudentName:  student.Name,
		SpecialNeeds: student.SpecialNeeds,
		Date:         formatDatePT(time.Now()),
	}
	if student.GeneratedNarrative != nil {
		data.Narrative = *student.GeneratedNarrative
	}
	if student.Grade != nil {
		data.Grade = *student.Grade
	}
	if student.ClassGroup != nil {
		data.ClassGroup = *student.ClassGroup
	}

	var templateContent string
	if cfg != nil {
		data.SchoolYear = deref(cfg.SchoolYear)
		data.RegionalCoordination = deref(cfg.RegionalCoordination)
		data.SchoolUnit = deref(cfg.SchoolUnit)
		data.Block = deref(cfg.Block)
		data.Shift = deref(cfg.Shift)
		data.TeacherName = deref(cfg.TeacherName)
		data.Registration = cfg.Registration
		if data.Grade == "" {
			data.Grade = deref(cfg.Grade)
		}
		if data.ClassGroup == "" {
			data.ClassGroup = deref(cfg.ClassGroup)
		}
		if cfg.TemplateID != nil {
			templateContent, err = s.templates.Content(ctx, *cfg.TemplateID, student.TeacherID)
			if err != nil {
				// a broken template falls back to the built-in layout
				s.logger.Warn("template unavailable, using default layout",
					zap.String("template_id", *cfg.TemplateID),
					zap.Error(err))
				templateContent = ""
			}
		}
	}
	return data, templateContent, nil
}

func reportFilename(student *models.Student, format ReportFormat) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, student.Name)
	if name == "" {
		name = student.ID
	}
	return fmt.Sprintf("RAv_%s.%s", name, format.Extension())
}

var monthsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func formatDatePT(t time.Time) string {
	return fmt.Sprintf("Brasília, %d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

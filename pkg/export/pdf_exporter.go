package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders the RAV form as a printable PDF.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document.
func (e *PDFExporter) Render(data ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 6, tr("SECRETARIA DE ESTADO DE EDUCAÇÃO DO DISTRITO FEDERAL"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr("SUBSECRETARIA DE EDUCAÇÃO BÁSICA"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr("Registro de Avaliação - RAv"), "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Formulário 1: Descrição do Processo de Aprendizagem do Estudante - %s", orPlaceholder(data.SchoolYear))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Times", "B", 10)
		pdf.CellFormat(58, 6, tr(label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Times", "", 10)
		pdf.CellFormat(0, 6, tr(orPlaceholder(value)), "", 1, "L", false, 0, "")
	}

	field("Ano Letivo", data.SchoolYear)
	field("Coordenação Regional de Ensino", data.RegionalCoordination)
	field("Unidade Escolar", data.SchoolUnit)
	field("Bloco", data.Block)
	field("Ano", data.Grade)
	field("Turma", data.ClassGroup)
	field("Turno", data.Shift)
	field("Bimestre", data.Term)
	field("Professor(a)", data.TeacherName)
	field("Matrícula SIGRDF", data.Registration)
	field("Estudante", data.StudentName)
	if data.SpecialNeeds {
		field("Estudante com deficiência", "Sim")
	}
	pdf.Ln(4)

	pdf.SetFont("Times", "B", 11)
	pdf.CellFormat(0, 7, tr("DESCRIÇÃO DO PROCESSO DE APRENDIZAGEM DO ESTUDANTE"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "", 11)
	for _, paragraph := range strings.Split(data.Narrative, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		pdf.MultiCell(0, 6, tr(paragraph), "", "J", false)
		pdf.Ln(2)
	}
	pdf.Ln(6)

	pdf.SetFont("Times", "", 10)
	pdf.CellFormat(0, 6, tr(data.Date), "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.CellFormat(0, 6, FieldPlaceholder, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr("Assinatura do(a) Professor(a)"), "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

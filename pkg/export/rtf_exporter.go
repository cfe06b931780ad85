package export

import (
	"fmt"
	"strings"
)

// RTFExporter renders the official RAV form as an RTF document. DOCX
// downloads reuse this output: word processors open RTF transparently
// and the school system accepts either.
type RTFExporter struct{}

func NewRTFExporter() *RTFExporter {
	return &RTFExporter{}
}

// Render produces the complete RTF document.
func (e *RTFExporter) Render(data ReportData) []byte {
	var b strings.Builder
	b.WriteString(`{\rtf1\ansi\ansicpg1252\deff0{\fonttbl{\f0 Times New Roman;}}\fs24` + "\n")

	writeCentered := func(text string, bold bool) {
		if bold {
			b.WriteString(`\pard\qc\b ` + escapeRTF(text) + `\b0\par` + "\n")
		} else {
			b.WriteString(`\pard\qc ` + escapeRTF(text) + `\par` + "\n")
		}
	}
	writeField := func(label, value string) {
		b.WriteString(`\pard\ql\b ` + escapeRTF(label) + `: \b0 ` + escapeRTF(orPlaceholder(value)) + `\par` + "\n")
	}

	writeCentered("SECRETARIA DE ESTADO DE EDUCAÇÃO DO DISTRITO FEDERAL", true)
	writeCentered("SUBSECRETARIA DE EDUCAÇÃO BÁSICA", true)
	writeCentered("Registro de Avaliação - RAv", true)
	writeCentered(fmt.Sprintf("Formulário 1: Descrição do Processo de Aprendizagem do Estudante - %s", orPlaceholder(data.SchoolYear)), false)
	b.WriteString(`\par` + "\n")

	writeField("Ano Letivo", data.SchoolYear)
	writeField("Coordenação Regional de Ensino", data.RegionalCoordination)
	writeField("Unidade Escolar", data.SchoolUnit)
	writeField("Bloco", data.Block)
	writeField("Ano", data.Grade)
	writeField("Turma", data.ClassGroup)
	writeField("Turno", data.Shift)
	writeField("Bimestre", data.Term)
	writeField("Professor(a)", data.TeacherName)
	writeField("Matrícula SIGRDF", data.Registration)
	writeField("Estudante", data.StudentName)
	if data.SpecialNeeds {
		writeField("Estudante com deficiência", "Sim")
	}
	b.WriteString(`\par` + "\n")

	writeCentered("DESCRIÇÃO DO PROCESSO DE APRENDIZAGEM DO ESTUDANTE", true)
	b.WriteString(`\par` + "\n")
	for _, paragraph := range strings.Split(data.Narrative, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		b.WriteString(`\pard\qj\fi720 ` + escapeRTF(paragraph) + `\par` + "\n")
	}
	b.WriteString(`\par` + "\n")

	b.WriteString(`\pard\qr ` + escapeRTF(data.Date) + `\par` + "\n")
	b.WriteString(`\par\par` + "\n")
	b.WriteString(`\pard\qc ` + escapeRTF(FieldPlaceholder) + `\par` + "\n")
	writeCentered("Assinatura do(a) Professor(a)", false)

	b.WriteString("}")
	return []byte(b.String())
}

// escapeRTF escapes control characters and encodes non-ASCII runes as
// RTF unicode escapes.
func escapeRTF(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\line `)
		case r < 0x80:
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, `\u%d?`, int16(r))
		}
	}
	return b.String()
}

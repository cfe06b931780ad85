// Package export renders finished evaluation reports in the formats the
// school system accepts.
package export

import "strings"

// FieldPlaceholder fills report fields the teacher left blank.
const FieldPlaceholder = "________________________"

// ReportData carries everything a renderer needs for one report.
type ReportData struct {
	SchoolYear           string
	RegionalCoordination string
	SchoolUnit           string
	Block                string
	Grade                string
	ClassGroup           string
	Shift                string
	Term                 string
	TeacherName          string
	Registration         string
	StudentName          string
	SpecialNeeds         bool
	Narrative            string
	Date                 string
}

// orPlaceholder substitutes underscores for blank fields so the printed
// form can be completed by hand.
func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return FieldPlaceholder
	}
	return v
}

// ApplyTemplate substitutes the `${...}` markers of an uploaded template.
// Unknown markers are left intact.
func ApplyTemplate(template string, data ReportData) string {
	replacer := strings.NewReplacer(
		"${Professor}", orPlaceholder(data.TeacherName),
		"${Aluno}", orPlaceholder(data.StudentName),
		"${Estudante}", orPlaceholder(data.StudentName),
		"${Bimestre}", orPlaceholder(data.Term),
		"${AnoLetivo}", orPlaceholder(data.SchoolYear),
		"${Matricula}", orPlaceholder(data.Registration),
		"${UnidadeEscolar}", orPlaceholder(data.SchoolUnit),
		"${CoordenacaoRegional}", orPlaceholder(data.RegionalCoordination),
		"${Turma}", orPlaceholder(data.ClassGroup),
		"${Turno}", orPlaceholder(data.Shift),
		"${Relatorio}", data.Narrative,
		"${Data}", data.Date,
	)
	return replacer.Replace(template)
}

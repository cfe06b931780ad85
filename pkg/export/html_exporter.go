package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>RAv - {{.StudentName}}</title>
<style>
body { font-family: "Times New Roman", serif; max-width: 800px; margin: 2rem auto; line-height: 1.5; }
header { text-align: center; font-weight: bold; }
.subtitle { font-weight: normal; }
dl { display: grid; grid-template-columns: 16rem auto; gap: 0.15rem 0.5rem; }
dt { font-weight: bold; }
h2 { text-align: center; font-size: 1rem; margin-top: 2rem; }
.narrative p { text-align: justify; text-indent: 2rem; }
.signature { text-align: center; margin-top: 4rem; }
.date { text-align: right; }
</style>
</head>
<body>
<header>
<div>SECRETARIA DE ESTADO DE EDUCAÇÃO DO DISTRITO FEDERAL</div>
<div>SUBSECRETARIA DE EDUCAÇÃO BÁSICA</div>
<div>Registro de Avaliação - RAv</div>
<div class="subtitle">Formulário 1: Descrição do Processo de Aprendizagem do Estudante - {{.SchoolYear}}</div>
</header>
<dl>
<dt>Ano Letivo:</dt><dd>{{.SchoolYear}}</dd>
<dt>Coordenação Regional de Ensino:</dt><dd>{{.RegionalCoordination}}</dd>
<dt>Unidade Escolar:</dt><dd>{{.SchoolUnit}}</dd>
<dt>Bloco:</dt><dd>{{.Block}}</dd>
<dt>Ano:</dt><dd>{{.Grade}}</dd>
<dt>Turma:</dt><dd>{{.ClassGroup}}</dd>
<dt>Turno:</dt><dd>{{.Shift}}</dd>
<dt>Bimestre:</dt><dd>{{.Term}}</dd>
<dt>Professor(a):</dt><dd>{{.TeacherName}}</dd>
<dt>Matrícula SIGRDF:</dt><dd>{{.Registration}}</dd>
<dt>Estudante:</dt><dd>{{.StudentName}}</dd>
{{if .SpecialNeeds}}<dt>Estudante com deficiência:</dt><dd>Sim</dd>{{end}}
</dl>
<h2>DESCRIÇÃO DO PROCESSO DE APRENDIZAGEM DO ESTUDANTE</h2>
<div class="narrative">
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</div>
<p class="date">{{.Date}}</p>
<div class="signature">
<div>{{.Placeholder}}</div>
<div>Assinatura do(a) Professor(a)</div>
</div>
</body>
</html>
`))

// HTMLExporter renders the report as a standalone HTML page, used for
// browser previews.
type HTMLExporter struct{}

func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

type htmlReportData struct {
	ReportData
	Paragraphs  []string
	Placeholder string
}

// Render creates the HTML document.
func (e *HTMLExporter) Render(data ReportData) ([]byte, error) {
	data.SchoolYear = orPlaceholder(data.SchoolYear)
	data.RegionalCoordination = orPlaceholder(data.RegionalCoordination)
	data.SchoolUnit = orPlaceholder(data.SchoolUnit)
	data.Block = orPlaceholder(data.Block)
	data.Grade = orPlaceholder(data.Grade)
	data.ClassGroup = orPlaceholder(data.ClassGroup)
	data.Shift = orPlaceholder(data.Shift)
	data.Term = orPlaceholder(data.Term)
	data.TeacherName = orPlaceholder(data.TeacherName)
	data.Registration = orPlaceholder(data.Registration)
	data.StudentName = orPlaceholder(data.StudentName)

	var paragraphs []string
	for _, p := range strings.Split(data.Narrative, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	buf := &bytes.Buffer{}
	err := htmlReport.Execute(buf, htmlReportData{
		ReportData:  data,
		Paragraphs:  paragraphs,
		Placeholder: FieldPlaceholder,
	})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
)

// UnreadableEvidence is stored when a source document yields no usable text.
const UnreadableEvidence = "Documento processado, mas o conteúdo não pôde ser lido automaticamente."

// nameLabels are tried in order against each line of the document.
var nameLabels = []string{
	"Estudante:",
	"Nome do estudante:",
	"Nome do aluno:",
	"Aluno:",
	"Aluna:",
	"Nome:",
	"Student:",
}

type documentStore interface {
	Read(name string) ([]byte, error)
}

// ExtractionService pulls evidence text and the student name out of
// uploaded source documents.
type ExtractionService struct {
	students  studentStore
	documents documentStore
	logger    *zap.Logger
}

func NewExtractionService(students studentStore, documents documentStore, logger *zap.Logger) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{students: students, documents: documents, logger: logger}
}

// Extract reads the student's source file, stores the evidence text and
// any detected name, and advances the record to awaiting_questions.
// A storage failure moves the record to error; unreadable content does not.
func (s *ExtractionService) Extract(ctx context.Context, student *models.Student) error {
	raw, err := s.documents.Read(student.SourceFilePath)
	if err != nil {
		_ = advance(ctx, s.students, student, models.StatusError, repository.UpdateStudentParams{})
		return fmt.Errorf("read source document %s: %w", student.SourceFilePath, err)
	}

	text := decodeText(raw)
	evidence := strings.TrimSpace(text)
	if evidence == "" {
		evidence = UnreadableEvidence
	}

	params := repository.UpdateStudentParams{ExtractedEvidence: &evidence}
	if name := detectStudentName(text); name != "" && name != student.Name {
		s.logger.Info("student name detected in document",
			zap.String("student_id", student.ID),
			zap.String("name", name))
		params.Name = &name
		student.Name = name
	}
	if err := advance(ctx, s.students, student, models.StatusAwaitingQuestions, params); err != nil {
		return fmt.Errorf("persist extraction: %w", err)
	}
	student.ExtractedEvidence = &evidence
	return nil
}

// decodeText keeps printable runes so binary formats degrade to whatever
// legible fragments they contain instead of failing outright.
func decodeText(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range string(raw) {
		switch {
		case r == '\n' || r == '\t' || r == ' ':
			b.WriteRune(r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// detectStudentName scans the document for a labeled name, then falls
// back to the first capitalized multi-word sequence. Returns "" when no
// acceptable candidate is found.
func detectStudentName(text string) string {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		for _, label := range nameLabels {
			idx := indexFold(line, label)
			if idx < 0 {
				continue
			}
			candidate := cleanNameCandidate(line[idx+len(label):])
			if acceptableName(candidate) {
				return candidate
			}
		}
	}
	for _, line := range lines {
		candidate := cleanNameCandidate(line)
		if looksLikeFullName(candidate) {
			return candidate
		}
	}
	return ""
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

func cleanNameCandidate(s string) string {
	s = strings.TrimSpace(s)
	if cut := strings.IndexAny(s, ",;|"); cut >= 0 {
		s = s[:cut]
	}
	return strings.Join(strings.Fields(s), " ")
}

func acceptableName(s string) bool {
	if len([]rune(s)) < 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

func looksLikeFullName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 6 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			// connectives such as "da", "de", "dos" are fine lowercase
			if len(runes) > 3 {
				return false
			}
			continue
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return acceptableName(s) && unicode.IsUpper([]rune(words[0])[0])
}

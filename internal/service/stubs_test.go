package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
)

var errStorageDown = errors.New("storage unavailable")

type studentStoreStub struct {
	students map[string]*models.Student
	updates  []repository.UpdateStudentParams
}

func newStudentStoreStub(students ...*models.Student) *studentStoreStub {
	stub := &studentStoreStub{students: map[string]*models.Student{}}
	for _, s := range students {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		stub.students[s.ID] = s
	}
	return stub
}

func (r *studentStoreStub) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = models.StatusPending
	}
	r.students[student.ID] = student
	return nil
}

func (r *studentStoreStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

func (r *studentStoreStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range r.students {
		if s.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *studentStoreStub) StatusSummary(ctx context.Context, teacherID string) ([]models.StatusSummary, error) {
	counts := map[models.EvaluationStatus]int{}
	for _, s := range r.students {
		if s.TeacherID == teacherID {
			counts[s.Status]++
		}
	}
	var out []models.StatusSummary
	for status, count := range counts {
		out = append(out, models.StatusSummary{Status: status, Count: count})
	}
	return out, nil
}

func (r *studentStoreStub) FindPreviousTerm(ctx context.Context, name, teacherID, excludeTerm string) (*models.Student, error) {
	var best *models.Student
	for _, s := range r.students {
		if s.Name != name || s.TeacherID != teacherID || s.Term == excludeTerm {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (r *studentStoreStub) Update(ctx context.Context, id string, params repository.UpdateStudentParams) error {
	student, ok := r.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.updates = append(r.updates, params)
	if params.Name != nil {
		student.Name = *params.Name
	}
	if params.Status != nil {
		student.Status = *params.Status
	}
	if params.ExtractedEvidence != nil {
		student.ExtractedEvidence = params.ExtractedEvidence
	}
	if params.PreviousNarrative != nil {
		student.PreviousNarrative = params.PreviousNarrative
	}
	if params.GeneratedNarrative != nil {
		student.GeneratedNarrative = params.GeneratedNarrative
	}
	if params.ProcessedFilePath != nil {
		student.ProcessedFilePath = params.ProcessedFilePath
	}
	if params.QuestionPayload != nil {
		student.QuestionPayload = params.QuestionPayload
	}
	if params.NarrativePayload != nil {
		student.NarrativePayload = params.NarrativePayload
	}
	student.UpdatedAt = time.Now()
	return nil
}

func (r *studentStoreStub) Delete(ctx context.Context, id string) error {
	delete(r.students, id)
	return nil
}

type questionStoreStub struct {
	byStudent map[string][]models.Question
}

func newQuestionStoreStub() *questionStoreStub {
	return &questionStoreStub{byStudent: map[string][]models.Question{}}
}

func (r *questionStoreStub) BulkInsert(ctx context.Context, questions []models.Question) error {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		r.byStudent[questions[i].StudentID] = append(r.byStudent[questions[i].StudentID], questions[i])
	}
	return nil
}

func (r *questionStoreStub) ListByStudent(ctx context.Context, studentID string) ([]models.Question, error) {
	return r.byStudent[studentID], nil
}

func (r *questionStoreStub) CountByStudent(ctx context.Context, studentID string) (int, error) {
	return len(r.byStudent[studentID]), nil
}

func (r *questionStoreStub) DeleteByStudent(ctx context.Context, studentID string) error {
	delete(r.byStudent, studentID)
	return nil
}

type answerStoreStub struct {
	byStudent map[string][]models.Answer
	questions *questionStoreStub
}

func newAnswerStoreStub(questions *questionStoreStub) *answerStoreStub {
	return &answerStoreStub{byStudent: map[string][]models.Answer{}, questions: questions}
}

func (r *answerStoreStub) Upsert(ctx context.Context, answer *models.Answer) error {
	answers := r.byStudent[answer.StudentID]
	for i := range answers {
		if answers[i].QuestionID == answer.QuestionID {
			answers[i].Response = answer.Response
			answers[i].Note = answer.Note
			return nil
		}
	}
	if answer.Response == "" && answer.Note == nil {
		return nil
	}
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	r.byStudent[answer.StudentID] = append(answers, *answer)
	return nil
}

func (r *answerStoreStub) ReplaceAll(ctx context.Context, studentID string, answers []models.Answer) error {
	out := make([]models.Answer, len(answers))
	for i, a := range answers {
		a.StudentID = studentID
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		out[i] = a
	}
	r.byStudent[studentID] = out
	return nil
}

func (r *answerStoreStub) ListByStudent(ctx context.Context, studentID string) ([]models.Answer, error) {
	return r.byStudent[studentID], nil
}

func (r *answerStoreStub) ListAnsweredQuestions(ctx context.Context, studentID string) ([]models.AnsweredQuestion, error) {
	var out []models.AnsweredQuestion
	for _, a := range r.byStudent[studentID] {
		answered := models.AnsweredQuestion{
			QuestionID: a.QuestionID,
			Response:   a.Response,
			Note:       a.Note,
		}
		if r.questions != nil {
			for _, q := range r.questions.byStudent[studentID] {
				if q.ID == a.QuestionID {
					answered.QuestionText = q.Text
					answered.Position = q.Position
				}
			}
		}
		out = append(out, answered)
	}
	return out, nil
}

func (r *answerStoreStub) DeleteByStudent(ctx context.Context, studentID string) error {
	delete(r.byStudent, studentID)
	return nil
}

type logStoreStub struct {
	entries []models.LogEntry
}

func (r *logStoreStub) Insert(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *logStoreStub) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.LogEntry, error) {
	var out []models.LogEntry
	for _, e := range r.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *logStoreStub) DeleteByStudent(ctx context.Context, studentID string) error {
	var kept []models.LogEntry
	for _, e := range r.entries {
		if e.StudentID != studentID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

type fixedBankStub struct {
	questions []models.FixedQuestion
}

func (r *fixedBankStub) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.FixedQuestion, error) {
	var out []models.FixedQuestion
	for _, q := range r.questions {
		if q.TeacherID == teacherID && q.Active {
			out = append(out, q)
		}
	}
	return out, nil
}

type generatorStub struct {
	completeFn     func(ctx context.Context, system, user string) (string, error)
	completeJSONFn func(ctx context.Context, system, user string, dest interface{}) (string, error)
	calls          int
}

func (g *generatorStub) Complete(ctx context.Context, system, user string) (string, error) {
	g.calls++
	return g.completeFn(ctx, system, user)
}

func (g *generatorStub) CompleteJSON(ctx context.Context, system, user string, dest interface{}) (string, error) {
	g.calls++
	return g.completeJSONFn(ctx, system, user, dest)
}

type configProviderStub struct {
	cfg *models.Configuration
}

func (c *configProviderStub) Get(ctx context.Context, teacherID string) (*models.Configuration, error) {
	return c.cfg, nil
}

type bucketStub struct {
	files map[string][]byte
	fail  bool
}

func newBucketStub() *bucketStub {
	return &bucketStub{files: map[string][]byte{}}
}

func (b *bucketStub) Save(name string, data []byte) error {
	if b.fail {
		return errStorageDown
	}
	b.files[name] = data
	return nil
}

func (b *bucketStub) SaveStream(name string, rd io.Reader) error {
	if b.fail {
		return errStorageDown
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	b.files[name] = data
	return nil
}

func (b *bucketStub) Read(name string) ([]byte, error) {
	if b.fail {
		return nil, errStorageDown
	}
	data, ok := b.files[name]
	if !ok {
		return nil, errStorageDown
	}
	return data, nil
}

func (b *bucketStub) Delete(name string) error {
	if b.fail {
		return errStorageDown
	}
	delete(b.files, name)
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

const studentColumns = `id, teacher_id, name, term, grade, class_group, special_needs,
source_file_path, processed_file_path, status, extracted_evidence,
previous_narrative, generated_narrative, question_payload, narrative_payload,
created_at, updated_at`

// StudentRepository manages persistence for student evaluation records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student row with generated defaults.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = models.StatusPending
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, teacher_id, name, term, grade, class_group, special_needs,
source_file_path, processed_file_path, status, extracted_evidence,
previous_narrative, generated_narrative, question_payload, narrative_payload, created_at, updated_at)
VALUES (:id, :teacher_id, :name, :term, :grade, :class_group, :special_needs,
:source_file_path, :processed_file_path, :status, :extracted_evidence,
:previous_narrative, :generated_narrative, :question_payload, :narrative_payload, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// List returns students matching the provided filters plus the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"teacher_id = $1"}
	args := []interface{}{filter.TeacherID}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"name":       "name",
		"term":       "term",
		"status":     "status",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, where, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// StatusSummary aggregates roster counts per status for a teacher.
func (r *StudentRepository) StatusSummary(ctx context.Context, teacherID string) ([]models.StatusSummary, error) {
	const query = `SELECT status, COUNT(*) AS count FROM students WHERE teacher_id = $1 GROUP BY status`
	var summary []models.StatusSummary
	if err := r.db.SelectContext(ctx, &summary, query, teacherID); err != nil {
		return nil, fmt.Errorf("status summary: %w", err)
	}
	return summary, nil
}

// FindPreviousTerm returns the most recent record for the same student
// name under the same teacher in a different term, or nil when absent.
// Matching by name is inherited behavior: two students sharing a name
// under one teacher will collide.
func (r *StudentRepository) FindPreviousTerm(ctx context.Context, name, teacherID, excludeTerm string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
WHERE name = $1 AND teacher_id = $2 AND term <> $3
ORDER BY created_at DESC LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, name, teacherID, excludeTerm); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find previous term: %w", err)
	}
	return &student, nil
}

// UpdateStudentParams defines the mutable fields of a student row.
type UpdateStudentParams struct {
	Name               *string
	Status             *models.EvaluationStatus
	ExtractedEvidence  *string
	PreviousNarrative  *string
	GeneratedNarrative *string
	ProcessedFilePath  *string
	QuestionPayload    *models.PromptPayload
	NarrativePayload   *models.PromptPayload
}

// Update persists the provided changes for a student row.
func (r *StudentRepository) Update(ctx context.Context, id string, params UpdateStudentParams) error {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	argPos := 1

	appendSet := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		appendSet("name", *params.Name)
	}
	if params.Status != nil {
		appendSet("status", *params.Status)
	}
	if params.ExtractedEvidence != nil {
		appendSet("extracted_evidence", *params.ExtractedEvidence)
	}
	if params.PreviousNarrative != nil {
		appendSet("previous_narrative", *params.PreviousNarrative)
	}
	if params.GeneratedNarrative != nil {
		appendSet("generated_narrative", *params.GeneratedNarrative)
	}
	if params.ProcessedFilePath != nil {
		appendSet("processed_file_path", *params.ProcessedFilePath)
	}
	if params.QuestionPayload != nil {
		appendSet("question_payload", *params.QuestionPayload)
	}
	if params.NarrativePayload != nil {
		appendSet("narrative_payload", *params.NarrativePayload)
	}

	if len(set) == 0 {
		return nil
	}
	appendSet("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

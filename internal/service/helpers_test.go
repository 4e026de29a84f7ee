package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/repository"
	"github.com/solvio/solvio-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryClassroomRepo struct {
	classrooms map[uint]models.Classroom
	nextID     uint
}

func newMemoryClassroomRepo() *memoryClassroomRepo {
	return &memoryClassroomRepo{
		classrooms: make(map[uint]models.Classroom),
		nextID:     1,
	}
}

func (m *memoryClassroomRepo) GetByID(_ context.Context, id uint) (models.Classroom, error) {
	classroom, ok := m.classrooms[id]
	if !ok {
		return models.Classroom{}, gorm.ErrRecordNotFound
	}
	return classroom, nil
}

func (m *memoryClassroomRepo) GetByCode(_ context.Context, code string) (models.Classroom, error) {
	for _, classroom := range m.classrooms {
		if classroom.Code == code {
			return classroom, nil
		}
	}
	return models.Classroom{}, gorm.ErrRecordNotFound
}

func (m *memoryClassroomRepo) CodeExists(_ context.Context, code string) (bool, error) {
	for _, classroom := range m.classrooms {
		if classroom.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryClassroomRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Classroom, error) {
	results := make([]models.Classroom, 0)
	for _, classroom := range m.classrooms {
		if classroom.TeacherID == teacherID {
			results = append(results, classroom)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassroomRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Classroom, error) {
	results := make([]models.Classroom, 0)
	for _, classroom := range m.classrooms {
		if classroom.HasStudent(studentID) {
			results = append(results, classroom)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassroomRepo) Create(_ context.Context, classroom *models.Classroom) error {
	classroom.ID = m.nextID
	classroom.CreatedAt = time.Now()
	m.classrooms[m.nextID] = *classroom
	m.nextID++
	return nil
}

func (m *memoryClassroomRepo) Update(_ context.Context, classroom *models.Classroom) error {
	if _, ok := m.classrooms[classroom.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.classrooms[classroom.ID] = *classroom
	return nil
}

func (m *memoryClassroomRepo) AddStudent(_ context.Context, classroomID uint, student models.User) error {
	classroom, ok := m.classrooms[classroomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	classroom.Students = append(classroom.Students, student)
	m.classrooms[classroomID] = classroom
	return nil
}

func (m *memoryClassroomRepo) RemoveStudent(_ context.Context, classroomID uint, studentID uint) error {
	classroom, ok := m.classrooms[classroomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	students := classroom.Students[:0]
	for _, student := range classroom.Students {
		if student.ID != studentID {
			students = append(students, student)
		}
	}
	classroom.Students = students
	m.classrooms[classroomID] = classroom
	return nil
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
	nextQID     uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{
		assignments: make(map[uint]models.Assignment),
		nextID:      1,
		nextQID:     1,
	}
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) ListByClassroom(_ context.Context, classroomID uint, activeOnly bool) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.ClassroomID != classroomID {
			continue
		}
		if activeOnly && !assignment.Active {
			continue
		}
		results = append(results, assignment)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	for i := range assignment.Questions {
		assignment.Questions[i].ID = m.nextQID
		assignment.Questions[i].AssignmentID = assignment.ID
		m.nextQID++
	}
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) AddQuestion(_ context.Context, question *models.Question) error {
	assignment, ok := m.assignments[question.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	question.ID = m.nextQID
	m.nextQID++
	assignment.Questions = append(assignment.Questions, *question)
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memoryProgressRepo struct {
	records map[uint]models.Progress
	nextID  uint

	// conflictNext makes the next Save fail with a version conflict to
	// exercise the reload-and-retry path; conflictAll makes every Save
	// fail.
	conflictNext bool
	conflictAll  bool
	saves        int
}

func newMemoryProgressRepo() *memoryProgressRepo {
	return &memoryProgressRepo{
		records: make(map[uint]models.Progress),
		nextID:  1,
	}
}

func cloneProgress(progress models.Progress) models.Progress {
	clone := progress
	clone.Submissions = append([]models.Submission(nil), progress.Submissions...)
	return clone
}

func (m *memoryProgressRepo) GetByID(_ context.Context, id uint) (models.Progress, error) {
	progress, ok := m.records[id]
	if !ok {
		return models.Progress{}, gorm.ErrRecordNotFound
	}
	return cloneProgress(progress), nil
}

func (m *memoryProgressRepo) GetByStudentAndAssignment(_ context.Context, studentID, assignmentID uint) (models.Progress, error) {
	for _, progress := range m.records {
		if progress.StudentID == studentID && progress.AssignmentID == assignmentID {
			return cloneProgress(progress), nil
		}
	}
	return models.Progress{}, gorm.ErrRecordNotFound
}

func (m *memoryProgressRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Progress, error) {
	results := make([]models.Progress, 0)
	for _, progress := range m.records {
		if progress.AssignmentID == assignmentID {
			results = append(results, cloneProgress(progress))
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryProgressRepo) ListByStudent(_ context.Context, studentID uint, assignmentIDs []uint) ([]models.Progress, error) {
	allowed := make(map[uint]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		allowed[id] = true
	}

	results := make([]models.Progress, 0)
	for _, progress := range m.records {
		if progress.StudentID != studentID {
			continue
		}
		if len(assignmentIDs) > 0 && !allowed[progress.AssignmentID] {
			continue
		}
		results = append(results, cloneProgress(progress))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryProgressRepo) CountCompletedByAssignment(_ context.Context, assignmentID uint) (int64, error) {
	var count int64
	for _, progress := range m.records {
		if progress.AssignmentID == assignmentID && progress.Status == models.ProgressStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (m *memoryProgressRepo) Create(_ context.Context, progress *models.Progress) error {
	for _, existing := range m.records {
		if existing.StudentID == progress.StudentID && existing.AssignmentID == progress.AssignmentID {
			return gorm.ErrDuplicatedKey
		}
	}
	progress.ID = m.nextID
	m.records[m.nextID] = cloneProgress(*progress)
	m.nextID++
	return nil
}

func (m *memoryProgressRepo) Save(_ context.Context, progress *models.Progress) error {
	m.saves++
	if m.conflictAll {
		return repository.ErrVersionConflict
	}
	if m.conflictNext {
		m.conflictNext = false
		stored := m.records[progress.ID]
		stored.Version++
		m.records[progress.ID] = stored
		return repository.ErrVersionConflict
	}

	stored, ok := m.records[progress.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != progress.Version {
		return repository.ErrVersionConflict
	}

	progress.Version++
	m.records[progress.ID] = cloneProgress(*progress)
	return nil
}

type stubGenerator struct {
	feedback     ai.Feedback
	report       ai.ClassReport
	failFeedback bool
	failReport   bool

	analyzeCalls int
	reportCalls  int
	lastReport   ai.ReportInput
}

func (s *stubGenerator) AnalyzeWork(_ context.Context, _ ai.WorkInput) (ai.Feedback, error) {
	s.analyzeCalls++
	if s.failFeedback {
		return ai.Feedback{}, context.DeadlineExceeded
	}
	return s.feedback, nil
}

func (s *stubGenerator) ClassReport(_ context.Context, input ai.ReportInput) (ai.ClassReport, error) {
	s.reportCalls++
	s.lastReport = input
	if s.failReport {
		return ai.ClassReport{}, context.DeadlineExceeded
	}
	return s.report, nil
}

type recordingPublisher struct {
	events []CompletionEvent
}

func (r *recordingPublisher) PublishCompletion(_ context.Context, event CompletionEvent) error {
	r.events = append(r.events, event)
	return nil
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/models"
)

type assignmentFixture struct {
	svc         AssignmentService
	classrooms  *memoryClassroomRepo
	assignments *memoryAssignmentRepo
	progressDB  *memoryProgressRepo
	classroomID uint
}

// newAssignmentFixture creates a classroom owned by testTeacher with two
// enrolled students (testStudent and 101).
func newAssignmentFixture(t *testing.T) assignmentFixture {
	t.Helper()
	ctx := context.Background()

	classrooms := newMemoryClassroomRepo()
	assignments := newMemoryAssignmentRepo()
	progressDB := newMemoryProgressRepo()

	classroom := models.Classroom{
		Name:      "Algebra 1",
		TeacherID: testTeacher.ID,
		Code:      "A1B2C3",
		Active:    true,
		Students: []models.User{
			{ID: testStudent.ID, Role: models.RoleStudent},
			{ID: 101, Role: models.RoleStudent},
		},
	}
	require.NoError(t, classrooms.Create(ctx, &classroom))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssignmentService(assignments, classrooms, progressDB, validate, testLogger())

	return assignmentFixture{
		svc:         svc,
		classrooms:  classrooms,
		assignments: assignments,
		progressDB:  progressDB,
		classroomID: classroom.ID,
	}
}

func sampleCreateRequest(classroomID uint) dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		ClassroomID: classroomID,
		Title:       "Homework 1",
		Questions: []dto.QuestionCreateRequest{
			{Prompt: "Solve 2x = 8", Solution: "x = 4"},
			{Prompt: "Solve x + 3 = 5", Solution: "x = 2", Type: models.QuestionTypeMath},
		},
	}
}

func TestAssignmentServiceCreateProvisionsStudents(t *testing.T) {
	f := newAssignmentFixture(t)

	result, err := f.svc.Create(context.Background(), testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)
	require.Equal(t, "Homework 1", result.Assignment.Title)
	require.Len(t, result.Assignment.Questions, 2)
	require.Equal(t, 1, result.Assignment.Questions[0].Position)
	require.Equal(t, 2, result.Assignment.Questions[1].Position)
	require.Equal(t, models.QuestionTypeMath, result.Assignment.Questions[0].Type)
	require.Equal(t, 2, result.Provisioned.Created)
	require.Equal(t, 0, result.Provisioned.Failed)

	record, err := f.progressDB.GetByStudentAndAssignment(context.Background(), 101, result.Assignment.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusNotStarted, record.Status)
}

func TestAssignmentServiceCreateCountsProvisionFailures(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	// A record for student 101 already exists from a previous assignment
	// with the same ID pairing; force a duplicate by pre-seeding.
	first, err := f.svc.Create(ctx, testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)
	require.Equal(t, 2, first.Provisioned.Created)

	// Seed a conflicting record for the next assignment ID.
	conflicting := models.Progress{StudentID: 101, AssignmentID: first.Assignment.ID + 1, ClassroomID: f.classroomID}
	require.NoError(t, f.progressDB.Create(ctx, &conflicting))

	second, err := f.svc.Create(ctx, testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)
	require.Equal(t, 1, second.Provisioned.Created)
	require.Equal(t, 1, second.Provisioned.Failed)
}

func TestAssignmentServiceCreateAccess(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, testStudent, sampleCreateRequest(f.classroomID))
	require.ErrorIs(t, err, ErrForbidden)

	otherTeacher := Actor{ID: 55, Role: models.RoleTeacher}
	_, err = f.svc.Create(ctx, otherTeacher, sampleCreateRequest(f.classroomID))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Create(ctx, testTeacher, dto.AssignmentCreateRequest{ClassroomID: f.classroomID})
	require.Error(t, err)
}

func TestAssignmentServiceGetHidesSolutionsFromStudents(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)

	// The fake stores the assignment without the classroom preloaded;
	// attach it the way the repository would.
	f.attachClassroom(t, created.Assignment.ID)

	teacherView, err := f.svc.Get(ctx, testTeacher, created.Assignment.ID)
	require.NoError(t, err)
	require.Equal(t, "x = 4", teacherView.Questions[0].Solution)
	require.Empty(t, teacherView.Status)

	studentView, err := f.svc.Get(ctx, testStudent, created.Assignment.ID)
	require.NoError(t, err)
	require.Empty(t, studentView.Questions[0].Solution)
	require.Equal(t, models.ProgressStatusNotStarted, studentView.Status)
}

func TestAssignmentServiceListByClassroom(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)
	f.attachClassroom(t, created.Assignment.ID)

	inactive := models.Assignment{ClassroomID: f.classroomID, Title: "Archived", Active: false}
	require.NoError(t, f.assignments.Create(ctx, &inactive))

	teacherList, err := f.svc.ListByClassroom(ctx, testTeacher, f.classroomID)
	require.NoError(t, err)
	require.Len(t, teacherList, 2)
	require.NotNil(t, teacherList[0].CompletedBy)
	require.Equal(t, int64(0), *teacherList[0].CompletedBy)

	studentList, err := f.svc.ListByClassroom(ctx, testStudent, f.classroomID)
	require.NoError(t, err)
	require.Len(t, studentList, 1)
	require.Equal(t, models.ProgressStatusNotStarted, studentList[0].Status)
	require.Empty(t, studentList[0].Questions[0].Solution)

	outsider := Actor{ID: 777, Role: models.RoleStudent}
	_, err = f.svc.ListByClassroom(ctx, outsider, f.classroomID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAssignmentServiceAddQuestion(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)
	f.attachClassroom(t, created.Assignment.ID)

	question, err := f.svc.AddQuestion(ctx, testTeacher, created.Assignment.ID, dto.QuestionCreateRequest{Prompt: "Solve 3x = 9", Solution: "x = 3"})
	require.NoError(t, err)
	require.Equal(t, 3, question.Position)
	require.Equal(t, models.QuestionTypeMath, question.Type)

	_, err = f.svc.AddQuestion(ctx, testStudent, created.Assignment.ID, dto.QuestionCreateRequest{Prompt: "nope"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAssignmentServiceDelete(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testTeacher, sampleCreateRequest(f.classroomID))
	require.NoError(t, err)
	f.attachClassroom(t, created.Assignment.ID)

	require.ErrorIs(t, f.svc.Delete(ctx, testStudent, created.Assignment.ID), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, testTeacher, created.Assignment.ID))

	_, err = f.svc.Get(ctx, testTeacher, created.Assignment.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

// attachClassroom mirrors the Preload("Classroom") the real repository
// performs.
func (f assignmentFixture) attachClassroom(t *testing.T, assignmentID uint) {
	t.Helper()
	ctx := context.Background()

	assignment, err := f.assignments.GetByID(ctx, assignmentID)
	require.NoError(t, err)
	classroom, err := f.classrooms.GetByID(ctx, f.classroomID)
	require.NoError(t, err)
	assignment.Classroom = classroom
	require.NoError(t, f.assignments.Update(ctx, &assignment))
}

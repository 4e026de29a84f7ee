package service

import "github.com/solvio/solvio-api/internal/models"

// Actor identifies the authenticated caller. It is populated from the JWT
// middleware locals; the services never authenticate, only authorize.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor holds the teacher role.
func (a Actor) IsTeacher() bool {
	return a.Role == models.RoleTeacher
}

// IsStudent reports whether the actor holds the student role.
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// CanManageClassroom allows only the owning teacher to mutate a classroom
// and everything beneath it.
func CanManageClassroom(actor Actor, classroom models.Classroom) error {
	if !actor.IsTeacher() || classroom.TeacherID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// CanViewClassroom allows the owning teacher and enrolled students to read
// a classroom and its assignments.
func CanViewClassroom(actor Actor, classroom models.Classroom) error {
	if actor.IsTeacher() && classroom.TeacherID == actor.ID {
		return nil
	}
	if actor.IsStudent() && classroom.HasStudent(actor.ID) {
		return nil
	}
	return ErrForbidden
}

// CanMutateProgress allows only the owning student to write to a progress
// aggregate. Teachers read progress, they never mutate it.
func CanMutateProgress(actor Actor, progress models.Progress) error {
	if !actor.IsStudent() || progress.StudentID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// CanViewProgress allows the owning student and the teacher of the parent
// classroom to read a progress aggregate.
func CanViewProgress(actor Actor, progress models.Progress, classroom models.Classroom) error {
	if actor.IsStudent() && progress.StudentID == actor.ID {
		return nil
	}
	if actor.IsTeacher() && classroom.TeacherID == actor.ID {
		return nil
	}
	return ErrForbidden
}

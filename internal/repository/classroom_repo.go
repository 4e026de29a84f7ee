package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/models"
)

// ClassroomRepository defines data operations for classrooms.
type ClassroomRepository interface {
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	GetByCode(ctx context.Context, code string) (models.Classroom, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	AddStudent(ctx context.Context, classroomID uint, student models.User) error
	RemoveStudent(ctx context.Context, classroomID uint, studentID uint) error
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository instantiates the repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Classroom{}).
		Preload("Teacher").
		Preload("Students")
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.baseQuery(ctx).First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) GetByCode(ctx context.Context, code string) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.baseQuery(ctx).
		Where("code = ?", code).
		Where("active = ?", true).
		First(&classroom).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Classroom{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *classroomRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.baseQuery(ctx).
		Where("teacher_id = ?", teacherID).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}

	return classrooms, nil
}

func (r *classroomRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.baseQuery(ctx).
		Joins("JOIN classroom_students ON classroom_students.classroom_id = classrooms.id").
		Where("classroom_students.user_id = ?", studentID).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}

	return classrooms, nil
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Save(classroom).Error
}

func (r *classroomRepository) AddStudent(ctx context.Context, classroomID uint, student models.User) error {
	return r.db.WithContext(ctx).
		Model(&models.Classroom{ID: classroomID}).
		Association("Students").
		Append(&student)
}

func (r *classroomRepository) RemoveStudent(ctx context.Context, classroomID uint, studentID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Classroom{ID: classroomID}).
		Association("Students").
		Delete(&models.User{ID: studentID})
}

package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// Classroom groups a teacher with enrolled students. Students join using a
// short unique code which the teacher can regenerate at any time.
type Classroom struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	Code        string    `gorm:"size:12;uniqueIndex;not null" json:"code"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Teacher     User      `gorm:"foreignKey:TeacherID" json:"teacher"`
	Students    []User    `gorm:"many2many:classroom_students" json:"students"`
}

// NewJoinCode returns a random six character uppercase hex code.
func NewJoinCode() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return strings.ToUpper(hex.EncodeToString(buf))
}

// HasStudent reports whether the given user is enrolled.
func (c Classroom) HasStudent(userID uint) bool {
	for _, student := range c.Students {
		if student.ID == userID {
			return true
		}
	}
	return false
}

package model

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// swagger:model Student
type Student struct {
	BaseModel
	Name              string   `gorm:"size:100;not null" json:"name"`
	Email             string   `gorm:"size:100;unique;not null" json:"email"`
	GradeLevel        string   `gorm:"size:20;index" json:"gradeLevel"`
	Class             string   `gorm:"size:20;index" json:"class"`
	Major             string   `gorm:"size:50" json:"major"`
	LearningInterests []string `gorm:"serializer:json" json:"learningInterests"`
	PreferredLanguage string   `gorm:"size:10;default:'id'" json:"preferredLanguage"`
}

func (Student) TableName() string {
	return "students"
}

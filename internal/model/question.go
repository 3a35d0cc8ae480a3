package model

// swagger:model Question
type Question struct {
	BaseModel
	TestID       uint   `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	QuestionText string `gorm:"type:text;not null" json:"questionText"`
	Code         string `gorm:"type:text" json:"code,omitempty"` // Snippet for programming questions
	// May be empty when correctness lives on the options.
	CorrectAnswer string `gorm:"size:255" json:"correctAnswer,omitempty"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Option
type Option struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	OptionText string `gorm:"size:255;not null" json:"optionText"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Option) TableName() string {
	return "options"
}

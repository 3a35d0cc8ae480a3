package model

// swagger:model UserResponse
type UserResponse struct {
	BaseModel
	SessionID        uint `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	QuestionID       uint `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	SelectedOptionID uint `gorm:"type:bigint unsigned;not null" json:"selectedOptionId"`
	IsCorrect        bool `gorm:"default:false" json:"isCorrect"`
}

func (UserResponse) TableName() string {
	return "user_responses"
}

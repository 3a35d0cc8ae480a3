package model

// swagger:model Test
type Test struct {
	BaseModel
	Skill        string `gorm:"size:100;not null" json:"skill"`
	NumQuestions int    `gorm:"not null" json:"numQuestions"`
	Duration     int    `gorm:"not null" json:"duration"` // Minutes
	CreatedBy    uint   `gorm:"index;type:bigint unsigned" json:"createdBy"`

	Questions []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

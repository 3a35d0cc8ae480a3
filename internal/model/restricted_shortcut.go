package model

// RestrictedShortcut is a keyboard combination the exam client must block.
// A default set is seeded on first migration.
// swagger:model RestrictedShortcut
type RestrictedShortcut struct {
	BaseModel
	Combination string `gorm:"size:50;unique;not null" json:"combination"`
	Description string `gorm:"size:255" json:"description"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (RestrictedShortcut) TableName() string {
	return "restricted_shortcuts"
}

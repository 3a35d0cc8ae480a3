package repository

import (
	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.First(&t, id).Error
	return &t, err
}

func (r *TestRepository) FindWithQuestions(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.Preload("Questions.Options").First(&t, id).Error
	return &t, err
}

func (r *TestRepository) List(offset, limit int) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64
	query := r.DB.Model(&model.Test{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&tests).Error
	return tests, total, err
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

// Delete removes the test along with its questions and options.
func (r *TestRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&model.Question{}).Where("test_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Option{}).Error; err != nil {
				return err
			}
			if err := tx.Where("test_id = ?", id).Delete(&model.Question{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Test{}, id).Error
	})
}

func (r *TestRepository) DeleteAll() (int64, error) {
	var ids []uint
	if err := r.DB.Model(&model.Test{}).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := r.Delete(id); err != nil {
			return 0, err
		}
	}
	return int64(len(ids)), nil
}

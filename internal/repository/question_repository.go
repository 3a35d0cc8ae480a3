package repository

import (
	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// Create inserts the question and its options in one transaction.
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		opts := q.Options
		q.Options = nil
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		for i := range opts {
			opts[i].QuestionID = q.ID
			if err := tx.Create(&opts[i]).Error; err != nil {
				return err
			}
		}
		q.Options = opts
		return nil
	})
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Options").First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) ListByTest(testID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Preload("Options").Where("test_id = ?", testID).Order("id").Find(&qs).Error
	return qs, err
}

// RandomByTest draws up to n random questions of a test. Random ordering
// is dialect specific: RAND() on MySQL, RANDOM() elsewhere.
func (r *QuestionRepository) RandomByTest(testID uint, n int) ([]model.Question, error) {
	orderExpr := "RANDOM()"
	if r.DB.Dialector.Name() == "mysql" {
		orderExpr = "RAND()"
	}

	var qs []model.Question
	err := r.DB.Preload("Options").
		Where("test_id = ?", testID).
		Order(orderExpr).
		Limit(n).
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Omit("Options").Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

func (r *QuestionRepository) AddOption(opt *model.Option) error {
	return r.DB.Create(opt).Error
}

func (r *QuestionRepository) OptionsByQuestionIDs(ids []uint) ([]model.Option, error) {
	var opts []model.Option
	if len(ids) == 0 {
		return opts, nil
	}
	err := r.DB.Where("question_id IN ?", ids).Find(&opts).Error
	return opts, err
}

package repository

import (
	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type FaceVerificationRepository struct {
	DB *gorm.DB
}

func NewFaceVerificationRepository(db *gorm.DB) *FaceVerificationRepository {
	return &FaceVerificationRepository{DB: db}
}

func (r *FaceVerificationRepository) FindByUser(userID uint) (*model.FaceVerification, error) {
	var fv model.FaceVerification
	err := r.DB.Where("user_id = ?", userID).First(&fv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fv, nil
}

func (r *FaceVerificationRepository) Save(fv *model.FaceVerification) error {
	return r.DB.Save(fv).Error
}

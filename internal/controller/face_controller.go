package controller

import (
	"net/http"
	"path/filepath"
	"strings"

	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FaceVerificationController struct {
	faceService *service.FaceVerificationService
}

func NewFaceVerificationController(faceService *service.FaceVerificationService) *FaceVerificationController {
	return &FaceVerificationController{faceService: faceService}
}

// UploadIDPhoto godoc
// @Summary Upload the reference ID photo
// @Description The photo must contain exactly one face. Re-uploading
// @Description resets verification state.
// @Tags face-verification
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "ID photo"
// @Success 201 {object} util.Response
// @Router /api/face/id-photo [post]
func (ctl *FaceVerificationController) UploadIDPhoto(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		util.BadRequest(c, "photo file is required")
		return
	}
	if header.Size > maxImageUpload {
		util.Error(c, http.StatusRequestEntityTooLarge, "photo too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{"image/"}); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(c, err)
		return
	}

	fv, err := ctl.faceService.UploadIDPhoto(
		c.Request.Context(), claims.UserID, file, header.Size, strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Created(c, fv)
}

// Verify godoc
// @Summary Verify a live snapshot against the stored ID photo
// @Tags face-verification
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param snapshot formData file true "Live webcam snapshot"
// @Success 200 {object} util.Response
// @Router /api/face/verify [post]
func (ctl *FaceVerificationController) Verify(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	header, err := c.FormFile("snapshot")
	if err != nil {
		util.BadRequest(c, "snapshot file is required")
		return
	}
	if header.Size > maxImageUpload {
		util.Error(c, http.StatusRequestEntityTooLarge, "snapshot too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{"image/"}); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(c, err)
		return
	}

	result, err := ctl.faceService.Verify(c.Request.Context(), claims.UserID, file)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Success(c, result)
}

// Status godoc
// @Summary Current verification state for the authenticated user
// @Tags face-verification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/face/status [get]
func (ctl *FaceVerificationController) Status(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	fv, err := ctl.faceService.Status(claims.UserID)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Success(c, fv)
}

func (ctl *FaceVerificationController) respondError(c *gin.Context, err error) {
	switch err {
	case util.ErrNoIDPhoto:
		util.Error(c, http.StatusPreconditionFailed, err.Error())
	case util.ErrNoFaceDetected, util.ErrMultipleFaces:
		util.Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}

package handlers

import (
	"net/http"

	"servicedesk/apperrors"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/services/user"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxAvatarBytes bounds avatar uploads.
const maxAvatarBytes = 5 << 20

type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{UserService: svc}
}

// CreateUserHandler handles POST /api/users.
func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.UserService.Create(c.Request.Context(), me, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usr)
}

// ListUsersHandler handles GET /api/users?userType=&establishmentId=&active=.
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	filter := userRepo.UserFilter{
		UserType:        models.UserType(c.Query("userType")),
		EstablishmentID: c.Query("establishmentId"),
		ActiveOnly:      queryBool(c, "active"),
	}
	if filter.UserType != "" && !filter.UserType.Valid() {
		utils.RespondError(c, apperrors.NewValidationError("invalid userType",
			apperrors.ValidationDetail{Field: "userType", Message: "must be one of admin, technician, end_user"}))
		return
	}
	users, err := h.UserService.List(c.Request.Context(), me, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListTechniciansHandler handles GET /api/users/technicians.
func (h *UserHandler) ListTechniciansHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	techs, err := h.UserService.ListTechnicians(c.Request.Context(), me)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, techs)
}

// GetUserHandler handles GET /api/users/:id.
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	usr, err := h.UserService.Get(c.Request.Context(), me, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateUserHandler handles PUT /api/users/:id.
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.UserService.Update(c.Request.Context(), me, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// DeleteUserHandler handles DELETE /api/users/:id.
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.UserService.Delete(c.Request.Context(), me, id); err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("User deleted", zap.String("uid", id), zap.String("by", me.UID))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// UploadAvatarHandler handles PATCH /api/users/me/avatar (multipart "file").
func (h *UserHandler) UploadAvatarHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("file not provided",
			apperrors.ValidationDetail{Field: "file", Message: "multipart field 'file' is required"}))
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		utils.RespondError(c, apperrors.NewValidationError("file too large",
			apperrors.ValidationDetail{Field: "file", Message: "must be at most 5 MiB"}))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, apperrors.NewUpstreamError("failed to read upload", err))
		return
	}
	defer file.Close()

	usr, err := h.UserService.UploadAvatar(c.Request.Context(), me, file)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// SetDeviceTokenHandler handles PUT /api/users/me/device-token.
func (h *UserHandler) SetDeviceTokenHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.DeviceTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.UserService.SetDeviceToken(c.Request.Context(), me, req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

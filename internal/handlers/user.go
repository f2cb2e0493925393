package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indecor/dreamspace-backend/internal/requestdata"
	"github.com/indecor/dreamspace-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// actingUserID pulls the authenticated user out of request context. The auth
// middleware guarantees it is set on every protected route.
func actingUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	user, err := uh.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	var req services.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	user, err := uh.userService.UpdateMe(c.Request.Context(), userID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

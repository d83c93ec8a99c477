package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type groupService interface {
	Create(ctx context.Context, ownerSiswaID string, req dto.CreateGroupRequest) (*models.Group, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Group, error)
	Mine(ctx context.Context, siswaID string) (*models.Group, error)
	SearchMembers(ctx context.Context, callerSiswaID string, query dto.MemberSearchQuery) ([]dto.MemberCandidate, error)
	Respond(ctx context.Context, groupID, siswaID string, req dto.RespondInvitationRequest) error
	UpdateMembers(ctx context.Context, groupID, ownerSiswaID string, req dto.UpdateGroupMembersRequest) (*models.Group, error)
	Submit(ctx context.Context, groupID, ownerSiswaID string, req dto.SubmitGroupApplicationRequest) (*models.Application, error)
	Withdraw(ctx context.Context, groupID, ownerSiswaID string) error
	Delete(ctx context.Context, groupID, ownerSiswaID string) error
}

// GroupHandler exposes group formation endpoints. Every route requires the
// student role; ownership checks live in the service.
type GroupHandler struct {
	service groupService
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(service groupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) siswaID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.SiswaID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.SiswaID, true
}

// Create godoc
// @Summary Create a group and invite members by NISN
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Invited NISNs"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid group payload"))
		return
	}
	group, err := h.service.Create(c.Request.Context(), siswaID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Mine godoc
// @Summary Get the caller's open group
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups/mine [get]
func (h *GroupHandler) Mine(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	group, err := h.service.Mine(c.Request.Context(), siswaID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// Get godoc
// @Summary Get group detail with the roster
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	group, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// SearchMembers godoc
// @Summary Search invitable students
// @Tags Groups
// @Produce json
// @Param search query string false "Name or NISN fragment"
// @Param exclude query string false "Comma separated siswa IDs already picked"
// @Success 200 {object} response.Envelope
// @Router /groups/candidates [get]
func (h *GroupHandler) SearchMembers(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	query := dto.MemberSearchQuery{Search: strings.TrimSpace(c.Query("search"))}
	if raw := c.Query("exclude"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.ExcludeIDs = append(query.ExcludeIDs, part)
			}
		}
	}
	candidates, err := h.service.SearchMembers(c.Request.Context(), siswaID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates)
}

// Respond godoc
// @Summary Accept or decline a group invitation
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.RespondInvitationRequest true "Response"
// @Success 204
// @Router /groups/{id}/respond [post]
func (h *GroupHandler) Respond(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	var req dto.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid response payload"))
		return
	}
	if err := h.service.Respond(c.Request.Context(), c.Param("id"), siswaID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateMembers godoc
// @Summary Replace the invited member set before submission
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.UpdateGroupMembersRequest true "Invited NISNs"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/members [put]
func (h *GroupHandler) UpdateMembers(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	var req dto.UpdateGroupMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid members payload"))
		return
	}
	group, err := h.service.UpdateMembers(c.Request.Context(), c.Param("id"), siswaID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group)
}

// Submit godoc
// @Summary Submit the group's application once every member accepted
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.SubmitGroupApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /groups/{id}/submit [post]
func (h *GroupHandler) Submit(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	var req dto.SubmitGroupApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}
	app, err := h.service.Submit(c.Request.Context(), c.Param("id"), siswaID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Withdraw godoc
// @Summary Withdraw a submitted group application before the decision
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 204
// @Router /groups/{id}/withdraw [post]
func (h *GroupHandler) Withdraw(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	if err := h.service.Withdraw(c.Request.Context(), c.Param("id"), siswaID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an open, never-submitted group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 204
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	siswaID, ok := h.siswaID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), siswaID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

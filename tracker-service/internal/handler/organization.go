package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// CreateOrganization creates an organization. Needs a system role.
func (h *Handler) CreateOrganization(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req domain.CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.svc.Organizations.CreateOrganization(c.Request.Context(), a, &req)
	if err != nil {
		writeError(c, err, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// ListOrganizations lists the caller's organizations.
func (h *Handler) ListOrganizations(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req domain.ListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Organizations.ListMyOrganizations(c.Request.Context(), a, req)
	if err != nil {
		writeError(c, err, "failed to list organizations")
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetOrganization(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	org, err := h.svc.Organizations.GetOrganization(c.Request.Context(), a, orgID)
	if err != nil {
		writeError(c, err, "failed to get organization")
		return
	}
	response.Success(c, org)
}

func (h *Handler) UpdateOrganization(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.UpdateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.svc.Organizations.UpdateOrganization(c.Request.Context(), a, orgID, &req)
	if err != nil {
		writeError(c, err, "failed to update organization")
		return
	}
	response.Success(c, org)
}

func (h *Handler) DeleteOrganization(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	if err := h.svc.Organizations.DeleteOrganization(c.Request.Context(), a, orgID); err != nil {
		writeError(c, err, "failed to delete organization")
		return
	}
	response.NoContent(c)
}

// GetSummary returns entity counts and the last issued numbers.
func (h *Handler) GetSummary(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	summary, err := h.svc.Organizations.GetSummary(c.Request.Context(), a, orgID)
	if err != nil {
		writeError(c, err, "failed to get organization summary")
		return
	}
	response.Success(c, summary)
}

func (h *Handler) ListMembers(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	members, err := h.svc.Members.ListMembers(c.Request.Context(), a, orgID)
	if err != nil {
		writeError(c, err, "failed to list members")
		return
	}
	response.Success(c, members)
}

func (h *Handler) AddMember(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.svc.Members.AddMember(c.Request.Context(), a, orgID, &req)
	if err != nil {
		writeError(c, err, "failed to add member")
		return
	}
	response.Created(c, member)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	if err := h.svc.Members.RemoveMember(c.Request.Context(), a, orgID, c.Param("user_id")); err != nil {
		writeError(c, err, "failed to remove member")
		return
	}
	response.NoContent(c)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func (h *Handler) CreateFeature(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.CreateFeatureRequest
	if !bindJSON(c, &req) {
		return
	}

	feature, err := h.svc.Features.CreateFeature(c.Request.Context(), a, orgID, &req)
	if err != nil {
		writeError(c, err, "failed to create feature")
		return
	}
	response.Created(c, feature)
}

func (h *Handler) ListFeatures(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.ListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Features.ListFeatures(c.Request.Context(), a, orgID, req)
	if err != nil {
		writeError(c, err, "failed to list features")
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetFeature(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	feature, err := h.svc.Features.GetFeature(c.Request.Context(), a, orgID, c.Param("feature_id"))
	if err != nil {
		writeError(c, err, "failed to get feature")
		return
	}
	response.Success(c, feature)
}

func (h *Handler) UpdateFeature(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.UpdateFeatureRequest
	if !bindJSON(c, &req) {
		return
	}

	feature, err := h.svc.Features.UpdateFeature(c.Request.Context(), a, orgID, c.Param("feature_id"), &req)
	if err != nil {
		writeError(c, err, "failed to update feature")
		return
	}
	response.Success(c, feature)
}

func (h *Handler) DeleteFeature(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	hard, ok := hardDelete(c)
	if !ok {
		return
	}
	if err := h.svc.Features.DeleteFeature(c.Request.Context(), a, orgID, c.Param("feature_id"), hard); err != nil {
		writeError(c, err, "failed to delete feature")
		return
	}
	response.NoContent(c)
}

// PutFeatureDoc stores or replaces the feature's markdown document.
func (h *Handler) PutFeatureDoc(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.PutFeatureDocRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Docs.PutDoc(c.Request.Context(), a, orgID, c.Param("feature_id"), req.Content)
	if err != nil {
		writeError(c, err, "failed to store feature document")
		return
	}
	response.Success(c, doc)
}

func (h *Handler) GetFeatureDoc(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	doc, err := h.svc.Docs.GetDoc(c.Request.Context(), a, orgID, c.Param("feature_id"))
	if err != nil {
		writeError(c, err, "failed to read feature document")
		return
	}
	response.Success(c, doc)
}

func (h *Handler) DeleteFeatureDoc(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	if err := h.svc.Docs.DeleteDoc(c.Request.Context(), a, orgID, c.Param("feature_id")); err != nil {
		writeError(c, err, "failed to delete feature document")
		return
	}
	response.NoContent(c)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/id-service/internal/generator"
	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/middleware"
	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

// Handler serves the id endpoints.
type Handler struct {
	generators generator.Registry
	auth       *middleware.AuthMiddleware
}

func NewHandler(generators generator.Registry, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{generators: generators, auth: auth}
}

// RegisterRoutes registers all routes. Every route needs a bearer token;
// generation consumes numbers in the caller's chosen namespace.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	ids := r.Group("/api/v1/ids")
	ids.Use(h.auth.RequireAuth())
	{
		ids.GET("/types", h.ListTypes)
		ids.POST("/encode", h.Encode)
		ids.POST("/:type", h.Generate)
		ids.GET("/:type/:id/validate", h.Validate)
		ids.GET("/:type/:id/parse", h.Parse)
	}
}

type GenerateRequest struct {
	Namespace string `json:"namespace"`
	Count     int    `json:"count" binding:"omitempty,min=1,max=1000"`
}

type GenerateResponse struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

// EncodeRequest carries the sequence as a pointer so zero reaches the
// range check instead of failing presence validation.
type EncodeRequest struct {
	Namespace string `json:"namespace" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
	Sequence  *int64 `json:"sequence" binding:"required"`
}

type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) ListTypes(c *gin.Context) {
	response.Success(c, gin.H{"types": h.generators.Types()})
}

// Generate issues one id, or count ids when count is given.
func (h *Handler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	typ := c.Param("type")
	gen, err := h.generators.Get(typ)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			l.Warn().Err(err).Msg("failed to bind generate request")
			response.BadRequest(c, err.Error())
			return
		}
	}
	if req.Count == 0 {
		req.Count = 1
	}

	ids, err := gen.GenerateBatch(ctx, req.Namespace, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, generator.ErrNamespaceRequired),
			errors.Is(err, generator.ErrInvalidNamespace),
			errors.Is(err, generator.ErrInvalidCount):
			response.BadRequest(c, err.Error())
		case scopedid.IsExhausted(err):
			response.UnprocessableEntity(c, "NAMESPACE_EXHAUSTED", err.Error())
		default:
			l.Error().Err(err).Str(log.FieldKind, typ).Str(log.FieldOrgID, req.Namespace).Msg("failed to generate ids")
			response.InternalError(c, "failed to generate ids")
		}
		return
	}

	l.Debug().Str(log.FieldKind, typ).Int("count", len(ids)).Msg("ids generated")
	response.Success(c, GenerateResponse{Type: typ, IDs: ids})
}

// Encode builds a scoped id from an explicit sequence number without
// allocating.
func (h *Handler) Encode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	kind, err := scopedid.ParseKind(req.Kind)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	codec, err := scopedid.For(kind)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := uuid.Parse(req.Namespace)
	if err != nil {
		response.BadRequest(c, generator.ErrInvalidNamespace.Error())
		return
	}

	id, err := codec.Encode(org, *req.Sequence)
	if err != nil {
		if scopedid.IsInvalidSequenceNumber(err) {
			response.UnprocessableEntity(c, "INVALID_SEQUENCE", err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"id": id.String(), "kind": kind, "sequence": *req.Sequence})
}

func (h *Handler) Validate(c *gin.Context) {
	gen, err := h.generators.Get(c.Param("type"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	valid, reason := gen.Validate(c.Param("id"))
	response.Success(c, ValidateResponse{Valid: valid, Reason: reason})
}

func (h *Handler) Parse(c *gin.Context) {
	gen, err := h.generators.Get(c.Param("type"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	result, err := gen.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	response.Success(c, result)
}

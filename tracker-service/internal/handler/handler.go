package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/middleware"
	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/tracker-service/internal/service"
)

// Services bundles the business logic the handler exposes.
type Services struct {
	Organizations service.OrganizationService
	Members       service.MemberService
	Projects      service.ProjectService
	Sprints       service.SprintService
	Tasks         service.TaskService
	Features      service.FeatureService
	Docs          service.DocService
}

// Handler handles HTTP requests for the tracker service.
type Handler struct {
	svc            Services
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, authMiddleware: authMiddleware}
}

// RegisterRoutes registers all routes. Every route requires a bearer token.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware.RequireAuth())

	orgs := api.Group("/organizations")
	{
		orgs.POST("", h.CreateOrganization)
		orgs.GET("", h.ListOrganizations)
		orgs.GET("/:org_id", h.GetOrganization)
		orgs.PATCH("/:org_id", h.UpdateOrganization)
		orgs.DELETE("/:org_id", h.DeleteOrganization)
		orgs.GET("/:org_id/summary", h.GetSummary)

		orgs.GET("/:org_id/members", h.ListMembers)
		orgs.POST("/:org_id/members", h.AddMember)
		orgs.DELETE("/:org_id/members/:user_id", h.RemoveMember)
	}

	org := orgs.Group("/:org_id")

	projects := org.Group("/projects")
	{
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:project_id", h.GetProject)
		projects.PATCH("/:project_id", h.UpdateProject)
		projects.DELETE("/:project_id", h.DeleteProject)
	}

	sprints := org.Group("/sprints")
	{
		sprints.POST("", h.CreateSprint)
		sprints.GET("", h.ListSprints)
		sprints.GET("/:sprint_id", h.GetSprint)
		sprints.PATCH("/:sprint_id", h.UpdateSprint)
		sprints.DELETE("/:sprint_id", h.DeleteSprint)
		sprints.GET("/:sprint_id/tasks", h.ListSprintTasks)
		sprints.PUT("/:sprint_id/tasks/:task_id", h.AddSprintTask)
		sprints.DELETE("/:sprint_id/tasks/:task_id", h.RemoveSprintTask)
	}

	tasks := org.Group("/tasks")
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListTasks)
		tasks.GET("/:task_id", h.GetTask)
		tasks.PATCH("/:task_id", h.UpdateTask)
		tasks.DELETE("/:task_id", h.DeleteTask)
	}

	features := org.Group("/features")
	{
		features.POST("", h.CreateFeature)
		features.GET("", h.ListFeatures)
		features.GET("/:feature_id", h.GetFeature)
		features.PATCH("/:feature_id", h.UpdateFeature)
		features.DELETE("/:feature_id", h.DeleteFeature)
		features.PUT("/:feature_id/doc", h.PutFeatureDoc)
		features.GET("/:feature_id/doc", h.GetFeatureDoc)
		features.DELETE("/:feature_id/doc", h.DeleteFeatureDoc)
	}
}

// actor builds the service caller from the verified token claims.
func actor(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.UserID == "" {
		response.Unauthorized(c, "unauthorized")
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:     claims.UserID,
		Username:   claims.Username,
		SystemRole: claims.HasSystemRole(),
	}, true
}

// orgScope resolves the caller and the :org_id path parameter.
func orgScope(c *gin.Context) (service.Actor, uuid.UUID, bool) {
	a, ok := actor(c)
	if !ok {
		return a, uuid.Nil, false
	}
	orgID, err := service.ParseOrgID(c.Param("org_id"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return a, uuid.Nil, false
	}
	c.Request = c.Request.WithContext(log.WithOrg(c.Request.Context(), orgID.String()))
	return a, orgID, true
}

// hardDelete reads the ?hard= query flag.
func hardDelete(c *gin.Context) (bool, bool) {
	raw := c.Query("hard")
	if raw == "" {
		return false, true
	}
	hard, err := strconv.ParseBool(raw)
	if err != nil {
		response.BadRequest(c, "hard must be a boolean")
		return false, false
	}
	return hard, true
}

var (
	badRequestErrors = []error{
		service.ErrInvalidOrganizationID,
		service.ErrInvalidTaskID,
		service.ErrInvalidFeatureID,
		service.ErrInvalidParent,
		service.ErrDocTooLarge,
	}
	forbiddenErrors = []error{
		service.ErrSystemRoleRequired,
		service.ErrNotMember,
		service.ErrNotManager,
	}
	notFoundErrors = []error{
		service.ErrOrganizationNotFound,
		service.ErrMemberNotFound,
		service.ErrProjectNotFound,
		service.ErrSprintNotFound,
		service.ErrSprintTaskNotFound,
		service.ErrTaskNotFound,
		service.ErrFeatureNotFound,
		service.ErrDocNotFound,
	}
	conflictErrors = []error{
		service.ErrOrganizationExists,
		service.ErrProjectExists,
		service.ErrFeatureExists,
		service.ErrLastOwner,
		service.ErrIdentifierConflict,
	}
)

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps service errors onto HTTP responses. Anything unknown is
// logged and reported as an internal error carrying only fallback.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case matches(err, badRequestErrors):
		response.BadRequest(c, err.Error())
	case matches(err, forbiddenErrors):
		response.Forbidden(c, err.Error())
	case matches(err, notFoundErrors):
		response.NotFound(c, err.Error())
	case matches(err, conflictErrors):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNamespaceExhausted):
		response.UnprocessableEntity(c, "NAMESPACE_EXHAUSTED", err.Error())
	case errors.Is(err, service.ErrOrganizationCreationFailed):
		response.Error(c, http.StatusServiceUnavailable, "PREFIX_UNAVAILABLE", err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldRoute, c.FullPath()).Msg(fallback)
		response.InternalError(c, fallback)
	}
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Str(log.FieldRoute, c.FullPath()).Msg("failed to bind request")
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

package audit

import (
	"context"

	"github.com/atdaga/skrm-server/pkg/log"
)

// Audit actions for tracker-service.
const (
	ActionCreateOrganization = "organization.create"
	ActionUpdateOrganization = "organization.update"
	ActionDeleteOrganization = "organization.delete"
	ActionAddMember          = "member.add"
	ActionRemoveMember       = "member.remove"
	ActionCreateProject      = "project.create"
	ActionUpdateProject      = "project.update"
	ActionDeleteProject      = "project.delete"
	ActionCreateSprint       = "sprint.create"
	ActionUpdateSprint       = "sprint.update"
	ActionDeleteSprint       = "sprint.delete"
	ActionLinkSprintTask     = "sprint.task.link"
	ActionUnlinkSprintTask   = "sprint.task.unlink"
	ActionCreateTask         = "task.create"
	ActionUpdateTask         = "task.update"
	ActionDeleteTask         = "task.delete"
	ActionCreateFeature      = "feature.create"
	ActionUpdateFeature      = "feature.update"
	ActionDeleteFeature      = "feature.delete"
	ActionPutFeatureDoc      = "feature.doc.put"
	ActionDeleteFeatureDoc   = "feature.doc.delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, orgID, entityID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldOrgID, orgID).
		Str(log.FieldEntityID, entityID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, userID, orgID, entityID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldOrgID, orgID).
		Str(log.FieldEntityID, entityID).
		Str(FieldDetail, detail).
		Msg(msg)
}

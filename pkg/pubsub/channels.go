package pubsub

import (
	"fmt"
	"strings"
)

// ChannelOrgEntity is the channel carrying changes to one entity type of
// one organization.
const ChannelOrgEntity = "tracker:org:%s:%s"

// Entities that publish change events.
const (
	EntityProject = "project"
	EntitySprint  = "sprint"
	EntityTask    = "task"
	EntityFeature = "feature"
)

// Entities lists every entity with a channel.
var Entities = []string{EntityProject, EntitySprint, EntityTask, EntityFeature}

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event types.
const (
	EventProjectCreated = EntityProject + "." + ActionCreated
	EventProjectUpdated = EntityProject + "." + ActionUpdated
	EventProjectDeleted = EntityProject + "." + ActionDeleted
	EventSprintCreated  = EntitySprint + "." + ActionCreated
	EventSprintUpdated  = EntitySprint + "." + ActionUpdated
	EventSprintDeleted  = EntitySprint + "." + ActionDeleted
	EventTaskCreated    = EntityTask + "." + ActionCreated
	EventTaskUpdated    = EntityTask + "." + ActionUpdated
	EventTaskDeleted    = EntityTask + "." + ActionDeleted
	EventFeatureCreated = EntityFeature + "." + ActionCreated
	EventFeatureUpdated = EntityFeature + "." + ActionUpdated
	EventFeatureDeleted = EntityFeature + "." + ActionDeleted
)

// EventType joins an entity and an action, e.g. "task.created".
func EventType(entity, action string) string {
	return entity + "." + action
}

// OrgChannel returns the channel name for an organization's entity events.
func OrgChannel(orgID, entity string) string {
	return fmt.Sprintf(ChannelOrgEntity, orgID, entity)
}

// OrgPattern returns a pattern matching every entity channel of orgID.
func OrgPattern(orgID string) string {
	return fmt.Sprintf(ChannelOrgEntity, orgID, "*")
}

// parseChannel splits "tracker:org:<org>:<entity>".
func parseChannel(channel string) (orgID, entity string, err error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[0] != "tracker" || parts[1] != "org" || parts[2] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[2], parts[3], nil
}

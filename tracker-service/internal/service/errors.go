package service

import "errors"

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrOrganizationExists         = errors.New("organization name or alias already exists")
	ErrOrganizationCreationFailed = errors.New("could not allocate a unique organization prefix")
	ErrInvalidOrganizationID      = errors.New("invalid organization id")
	ErrSystemRoleRequired         = errors.New("a system role is required")
	ErrNotMember                  = errors.New("not a member of this organization")
	ErrNotManager                 = errors.New("owner or admin role required")
	ErrMemberNotFound             = errors.New("member not found")
	ErrLastOwner                  = errors.New("cannot remove the last owner")
	ErrProjectNotFound            = errors.New("project not found")
	ErrProjectExists              = errors.New("project name already exists")
	ErrSprintNotFound             = errors.New("sprint not found")
	ErrSprintTaskNotFound         = errors.New("task is not in sprint")
	ErrTaskNotFound               = errors.New("task not found")
	ErrInvalidTaskID              = errors.New("task id is not valid in this organization")
	ErrFeatureNotFound            = errors.New("feature not found")
	ErrFeatureExists              = errors.New("feature name already exists")
	ErrInvalidFeatureID           = errors.New("feature id is not valid in this organization")
	ErrInvalidParent              = errors.New("invalid parent feature")
	ErrNamespaceExhausted         = errors.New("organization has no identifiers left")
	ErrIdentifierConflict         = errors.New("allocated identifier already in use")
	ErrDocNotFound                = errors.New("feature document not found")
	ErrDocTooLarge                = errors.New("feature document too large")
)

package service

import "github.com/google/uuid"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID     string
	Username   string
	SystemRole bool
}

// ParseOrgID parses an organization id from a request path.
func ParseOrgID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidOrganizationID
	}
	return id, nil
}

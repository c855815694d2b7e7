package domain

import "time"

// MemberRole is a user's role inside an organization.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Valid reports whether r is a known role.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may change the organization and its
// membership.
func (r MemberRole) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// MemberModel is the GORM model for organization_members.
type MemberModel struct {
	OrgID     string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);primaryKey;index"`
	Role      string    `gorm:"type:varchar(20);not null"`
	AddedBy   string    `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (MemberModel) TableName() string {
	return "organization_members"
}

// Member is a user's membership in an organization.
type Member struct {
	OrgID     string     `json:"org_id"`
	UserID    string     `json:"user_id"`
	Role      MemberRole `json:"role"`
	AddedBy   string     `json:"added_by"`
	CreatedAt time.Time  `json:"created_at"`
}

func (m *MemberModel) ToDomain() *Member {
	return &Member{
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Role:      MemberRole(m.Role),
		AddedBy:   m.AddedBy,
		CreatedAt: m.CreatedAt,
	}
}

func MemberToModel(m *Member) *MemberModel {
	return &MemberModel{
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		AddedBy:   m.AddedBy,
		CreatedAt: m.CreatedAt,
	}
}

// AddMemberRequest adds a user or changes an existing member's role.
type AddMemberRequest struct {
	UserID string     `json:"user_id" binding:"required,min=1,max=64"`
	Role   MemberRole `json:"role" binding:"required,oneof=owner admin member"`
}

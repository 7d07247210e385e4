package entity

import (
	"time"
)

type Role string

const (
	RoleDonor    Role = "donor"
	RoleReceiver Role = "receiver"
)

func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleReceiver
}

// Profile is the per-identity record carrying role and contact details.
// IdentityID is the external identity provider's user id; at most one profile exists per identity.
type Profile struct {
	ID           string    `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	IdentityID   string    `json:"identity_id" firestore:"identityId" gorm:"size:128;uniqueIndex;not null"`
	Email        string    `json:"email" firestore:"email" gorm:"size:320;index"`
	DisplayName  string    `json:"display_name,omitempty" firestore:"displayName,omitempty" gorm:"size:200"`
	Role         Role      `json:"role" firestore:"role" gorm:"size:16;not null"`
	Address      string    `json:"address,omitempty" firestore:"address,omitempty" gorm:"size:500"`
	ZipCode      string    `json:"zip_code" firestore:"zipCode" gorm:"size:16;not null"`
	Phone        string    `json:"phone,omitempty" firestore:"phone,omitempty" gorm:"size:32"`
	Organization string    `json:"organization,omitempty" firestore:"organization,omitempty" gorm:"size:200"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Profile) IsDonor() bool {
	return p != nil && p.Role == RoleDonor
}

func (p *Profile) IsReceiver() bool {
	return p != nil && p.Role == RoleReceiver
}

// ProfileSummary is the slice of a profile joined into other views.
type ProfileSummary struct {
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
}

func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{
		Name:         p.DisplayName,
		Organization: p.Organization,
	}
}

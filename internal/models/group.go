package models

import "time"

// GroupStatus tracks the group's submission lifecycle.
type GroupStatus string

const (
	GroupStatusOpen      GroupStatus = "OPEN"
	GroupStatusSubmitted GroupStatus = "SUBMITTED"
)

// InvitationStatus tracks one member's response to a group invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
)

// Group is a provisional multi-student bundling for a single application.
// Membership history is never deleted; withdrawal reverts status only.
type Group struct {
	ID            string        `db:"id" json:"id"`
	OwnerSiswaID  string        `db:"owner_siswa_id" json:"owner_siswa_id"`
	Status        GroupStatus   `db:"status" json:"status"`
	ApplicationID *string       `db:"application_id" json:"application_id,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	Members       []GroupMember `db:"-" json:"members,omitempty"`
}

// GroupMember is one invited student and their response state.
type GroupMember struct {
	ID          string           `db:"id" json:"id"`
	GroupID     string           `db:"group_id" json:"group_id"`
	SiswaID     string           `db:"siswa_id" json:"siswa_id"`
	Status      InvitationStatus `db:"status" json:"status"`
	InvitedAt   time.Time        `db:"invited_at" json:"invited_at"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at,omitempty"`
	SiswaName   *string          `db:"siswa_name" json:"siswa_name,omitempty"`
	SiswaNISN   *string          `db:"siswa_nisn" json:"siswa_nisn,omitempty"`
}

// AllAccepted reports whether every invited member has accepted. The owner is
// counted as accepted implicitly on creation.
func (g *Group) AllAccepted() bool {
	for _, m := range g.Members {
		if m.Status != InvitationAccepted {
			return false
		}
	}
	return true
}

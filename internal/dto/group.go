package dto

// CreateGroupRequest invites members by NISN at group creation.
type CreateGroupRequest struct {
	InvitedNISNs []string `json:"invited_nisns" validate:"required,min=1"`
}

// UpdateGroupMembersRequest replaces the invited member set pre-submission.
type UpdateGroupMembersRequest struct {
	InvitedNISNs []string `json:"invited_nisns" validate:"required,min=1"`
}

// RespondInvitationRequest is a member's accept/decline response.
type RespondInvitationRequest struct {
	Accept bool `json:"accept"`
}

// SubmitGroupApplicationRequest converts a fully-accepted group into an
// application on behalf of all members.
type SubmitGroupApplicationRequest struct {
	IndustriID     string `json:"industri_id" validate:"required"`
	Catatan        string `json:"catatan"`
	TanggalMulai   string `json:"tanggal_mulai"`
	TanggalSelesai string `json:"tanggal_selesai"`
}

// MemberSearchQuery filters candidate students for invitation. ExcludeIDs are
// locally-selected candidates the caller already holds, de-duplicated by id.
type MemberSearchQuery struct {
	Search     string
	ExcludeIDs []string
}

// MemberCandidate is one searchable invitation candidate.
type MemberCandidate struct {
	SiswaID  string `json:"siswa_id"`
	NISN     string `json:"nisn"`
	FullName string `json:"full_name"`
	Kelas    string `json:"kelas,omitempty"`
}

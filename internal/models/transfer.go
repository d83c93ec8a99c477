package models

import (
	"strings"
	"time"
)

// TransferStatus is one link in the pindah PKL approval chain. The chain is
// strictly ordered; a rejection at any link is terminal.
type TransferStatus string

const (
	TransferPendingPembimbing  TransferStatus = "pending_pembimbing"
	TransferPendingKaprog      TransferStatus = "pending_kaprog"
	TransferPendingKoordinator TransferStatus = "pending_koordinator"
	TransferApproved           TransferStatus = "approved"
	TransferRejected           TransferStatus = "rejected"
)

// NormalizeTransferStatus lower-cases status input at the boundary.
func NormalizeTransferStatus(raw string) TransferStatus {
	return TransferStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Next returns the chain state after an approval at the current link.
func (s TransferStatus) Next() (TransferStatus, bool) {
	switch s {
	case TransferPendingPembimbing:
		return TransferPendingKaprog, true
	case TransferPendingKaprog:
		return TransferPendingKoordinator, true
	case TransferPendingKoordinator:
		return TransferApproved, true
	}
	return "", false
}

// Terminal reports whether the chain has finished.
func (s TransferStatus) Terminal() bool {
	return s == TransferApproved || s == TransferRejected
}

// HatForLink returns which role hat owns the decision at a pending link.
func (s TransferStatus) HatForLink() (Hat, bool) {
	switch s {
	case TransferPendingPembimbing:
		return HatPembimbing, true
	case TransferPendingKaprog:
		return HatKaprog, true
	case TransferPendingKoordinator:
		return HatKoordinator, true
	}
	return "", false
}

// Transfer is a request to move an approved application to another industry.
type Transfer struct {
	ID             string         `db:"id" json:"id"`
	ApplicationID  string         `db:"application_id" json:"application_id"`
	SiswaID        string         `db:"siswa_id" json:"siswa_id"`
	TargetIndustri string         `db:"target_industri_id" json:"target_industri_id"`
	Status         TransferStatus `db:"status" json:"status"`
	Catatan        string         `db:"catatan" json:"catatan"`
	DocumentURL    *string        `db:"document_url" json:"document_url,omitempty"`
	TanggalEfektif *time.Time     `db:"tanggal_efektif" json:"tanggal_efektif,omitempty"`
	DecisionNotes  []byte         `db:"decision_notes" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// TransferDecision is one recorded step of the chain, stored as JSON history.
type TransferDecision struct {
	Hat       Hat            `json:"hat"`
	ActorID   string         `json:"actor_id"`
	Status    TransferStatus `json:"status"`
	Catatan   string         `json:"catatan,omitempty"`
	DecidedAt time.Time      `json:"decided_at"`
}

// TransferFilter constrains per-role listing queries. Link filtering happens
// server-side: each role sees only requests currently addressed to it.
type TransferFilter struct {
	Statuses     []TransferStatus
	SiswaID      string
	PembimbingID string
	JurusanID    string
	Page         int
}

package models

// Hat identifies one of the concurrent roles a teacher account can hold.
type Hat string

const (
	HatAdmin       Hat = "ADMIN"
	HatKaprog      Hat = "KAPROG"
	HatKoordinator Hat = "KOORDINATOR"
	HatWaliKelas   Hat = "WALI_KELAS"
	HatPembimbing  Hat = "PEMBIMBING"
	HatSiswa       Hat = "SISWA"
)

// RoleFlags mirrors the per-teacher role columns on the guru table.
type RoleFlags struct {
	IsKaprog      bool `db:"is_kaprog" json:"is_kaprog"`
	IsKoordinator bool `db:"is_koordinator" json:"is_koordinator"`
	IsWaliKelas   bool `db:"is_wali_kelas" json:"is_wali_kelas"`
	IsPembimbing  bool `db:"is_pembimbing" json:"is_pembimbing"`
}

// RoleHat is one resolved capability with its menu label and landing path.
type RoleHat struct {
	Hat         Hat    `json:"hat"`
	Label       string `json:"label"`
	LandingPath string `json:"landing_path"`
}

// HatResolution is the outcome of resolving a teacher's role flags.
// FallbackApplied marks the no-flag case explicitly: the Pembimbing default is
// a policy decision, not evidence the teacher holds that role, and callers are
// expected to log a diagnostic when it fires.
type HatResolution struct {
	Hats            []RoleHat `json:"hats"`
	Primary         RoleHat   `json:"primary"`
	FallbackApplied bool      `json:"fallback_applied"`
}

var hatOrder = []struct {
	hat     Hat
	label   string
	landing string
	enabled func(RoleFlags) bool
}{
	{HatKaprog, "Kepala Program", "/kaprog", func(f RoleFlags) bool { return f.IsKaprog }},
	{HatKoordinator, "Koordinator PKL", "/koordinator", func(f RoleFlags) bool { return f.IsKoordinator }},
	{HatWaliKelas, "Wali Kelas", "/wali-kelas", func(f RoleFlags) bool { return f.IsWaliKelas }},
	{HatPembimbing, "Guru Pembimbing", "/pembimbing", func(f RoleFlags) bool { return f.IsPembimbing }},
}

// ResolveHats maps role flags to the ordered hat list. Priority is fixed:
// Kaprog > Koordinator > Wali Kelas > Pembimbing; the first hat is primary.
// Nil or all-false flags fall back to Pembimbing with FallbackApplied set.
func ResolveHats(flags *RoleFlags) HatResolution {
	var f RoleFlags
	if flags != nil {
		f = *flags
	}

	hats := make([]RoleHat, 0, len(hatOrder))
	for _, entry := range hatOrder {
		if entry.enabled(f) {
			hats = append(hats, RoleHat{Hat: entry.hat, Label: entry.label, LandingPath: entry.landing})
		}
	}

	if len(hats) == 0 {
		fallback := RoleHat{Hat: HatPembimbing, Label: "Guru Pembimbing", LandingPath: "/pembimbing"}
		return HatResolution{Hats: []RoleHat{fallback}, Primary: fallback, FallbackApplied: true}
	}

	return HatResolution{Hats: hats, Primary: hats[0]}
}

package entity

// Role is derived per session from the doctors collection, never stored on the account.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

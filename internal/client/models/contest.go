package models

import "time"

type ContestTeam struct {
	ID             int64  `json:"id"`
	TeamName       string `json:"team_name"`
	LeaderID       int64  `json:"leader_id"`
	LeaderUsername string `json:"leader_username"`
	MemberCount    int    `json:"member_count"`
	CreatedAt      string `json:"created_at"`
}

type TeamMember struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// AccessStatus is the combined access bundle for one contest and the
// current user.
type AccessStatus struct {
	CanAccess     bool   `json:"can_access"`
	CanRegister   bool   `json:"can_register"`
	ContestStatus string `json:"contest_status"`
	IsRegistered  bool   `json:"is_registered"`
}

type RegistrationStatus struct {
	IsRegistered bool   `json:"is_registered"`
	RegisteredAt string `json:"registered_at,omitempty"`
	TeamID       *int64 `json:"team_id,omitempty"`
}

type Contest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Problems  []Problem `json:"problems,omitempty"`
}

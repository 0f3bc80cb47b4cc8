package domain

// NotifyRole is a closed vocabulary of escalation notification targets,
// aligned with the access-control collaborator's role tags.
type NotifyRole string

const (
	NotifyRoleAgent    NotifyRole = "agent"
	NotifyRoleTeamLead NotifyRole = "team_lead"
	NotifyRoleManager  NotifyRole = "manager"
	NotifyRoleAdmin    NotifyRole = "admin"
)

var validNotifyRoles = map[NotifyRole]bool{
	NotifyRoleAgent:    true,
	NotifyRoleTeamLead: true,
	NotifyRoleManager:  true,
	NotifyRoleAdmin:    true,
}

// Valid reports whether the role belongs to the known vocabulary.
func (r NotifyRole) Valid() bool {
	return validNotifyRoles[r]
}

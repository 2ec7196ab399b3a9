package dto

// DashboardResponseDTO is the role-dependent landing view. Admins get the
// user list, managers their adjustment bound, users their balance and badge.
type DashboardResponseDTO struct {
	Username         string            `json:"username"`
	Role             string            `json:"role"`
	Balance          *int64            `json:"balance,omitempty"`
	BadgeURL         string            `json:"badge_url,omitempty"`
	ManagerMaxAmount int64             `json:"manager_max_amount,omitempty"`
	Users            []UserResponseDTO `json:"users,omitempty"`
}

package auth

import "time"

const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

// Household is the sharing boundary for pantry, meals and recipes.
type Household struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// User is the domain entity.
type User struct {
	ID          string
	HouseholdID string
	Name        string
	Email       string
	Password    string
	Role        string
}

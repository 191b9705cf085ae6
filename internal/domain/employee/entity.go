package employee

import "time"

type Employee struct {
	ID             string
	UserID         string
	OrganizationID string
	TeamID         *string
	ManagerID      *string
	FullName       string
	Email          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the single persisted entity: one row per account.
// Password holds the bcrypt hash and is excluded from every JSON
// rendering via json:"-".
type User struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Email       string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password    string     `gorm:"size:180;not null" json:"-"`
	FullName    string     `gorm:"size:255;not null" json:"fullName"`
	Phone       *string    `gorm:"size:20" json:"phone"`
	Address     *string    `json:"address"`
	DateOfBirth *time.Time `gorm:"type:date" json:"dateOfBirth"`
	Role        string     `gorm:"size:10;not null" json:"role"`
	IsActive    bool       `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ValidRole reports whether r is one of the accepted role values.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

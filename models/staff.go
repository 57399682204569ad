package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

type StaffMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Role      string    `gorm:"type:varchar(50);not null;default:'staff'" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (StaffMember) TableName() string {
	return "staff"
}

// StaffPermission is created alongside every StaffMember; a staff row
// without its permission row is an invalid partial state.
type StaffPermission struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StaffID          uint      `gorm:"uniqueIndex;not null" json:"staff_id"`
	CanViewAllOrders bool      `gorm:"not null;default:false" json:"can_view_all_orders"`
	AllowedStaffIDs  string    `gorm:"type:text;not null;default:'[]'" json:"allowed_staff_ids"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (StaffPermission) TableName() string {
	return "staff_permissions"
}

// StaffEmail derives the contact handle for a staff member from their
// display name: lowercased, special characters stripped, spaces as dots.
func StaffEmail(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	handle := strings.Join(strings.Fields(b.String()), ".")
	return fmt.Sprintf("%s@gokul-staff.local", handle)
}

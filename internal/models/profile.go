package models

import "time"

// Profile holds role-specific identity details linked to a user account.
type Profile struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Email            string    `db:"email" json:"email"`
	FullName         string    `db:"full_name" json:"full_name"`
	Role             UserRole  `db:"role" json:"role"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	StudentID        *string   `db:"student_id" json:"student_id,omitempty"`
	StaffID          *string   `db:"staff_id" json:"staff_id,omitempty"`
	YearOfStudy      *int      `db:"year_of_study" json:"year_of_study,omitempty"`
	DepartmentID     *string   `db:"department_id" json:"department_id,omitempty"`
	RoomID           *string   `db:"room_id" json:"room_id,omitempty"`
	PermanentAddress *string   `db:"permanent_address" json:"permanent_address,omitempty"`
	LocalAddress     *string   `db:"local_address" json:"local_address,omitempty"`
	GuardianName     *string   `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianPhone    *string   `db:"guardian_phone" json:"guardian_phone,omitempty"`
	PhotoURL         *string   `db:"photo_url" json:"photo_url,omitempty"`
	IsApproved       bool      `db:"is_approved" json:"is_approved"`
	IsBlocked        bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CompletionPercent reports how much of the student profile is filled in.
// Outing requests require 100%. Staff profiles are always considered complete.
func (p *Profile) CompletionPercent() int {
	if p.Role != RoleStudent {
		return 100
	}
	required := []bool{
		p.FullName != "",
		p.Phone != nil && *p.Phone != "",
		p.StudentID != nil && *p.StudentID != "",
		p.YearOfStudy != nil && *p.YearOfStudy > 0,
		p.DepartmentID != nil && *p.DepartmentID != "",
		p.RoomID != nil && *p.RoomID != "",
		p.PermanentAddress != nil && *p.PermanentAddress != "",
		p.LocalAddress != nil && *p.LocalAddress != "",
		p.GuardianName != nil && *p.GuardianName != "",
		p.GuardianPhone != nil && *p.GuardianPhone != "",
	}
	filled := 0
	for _, ok := range required {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(required)
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role         *UserRole
	DepartmentID string
	Approved     *bool
	Blocked      *bool
	Search       string
	Limit        int
	Offset       int
}

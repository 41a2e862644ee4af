package dto

import "github.com/noah-isme/hostel-outing-api/internal/models"

// UpdateProfileRequest carries the self-service editable profile fields.
type UpdateProfileRequest struct {
	FullName         string  `json:"full_name" validate:"required"`
	Phone            *string `json:"phone,omitempty"`
	StudentID        *string `json:"student_id,omitempty"`
	StaffID          *string `json:"staff_id,omitempty"`
	YearOfStudy      *int    `json:"year_of_study,omitempty"`
	DepartmentID     *string `json:"department_id,omitempty"`
	RoomID           *string `json:"room_id,omitempty"`
	PermanentAddress *string `json:"permanent_address,omitempty"`
	LocalAddress     *string `json:"local_address,omitempty"`
	GuardianName     *string `json:"guardian_name,omitempty"`
	GuardianPhone    *string `json:"guardian_phone,omitempty"`
}

// ReviewProfileRequest is the admin approval/block toggle payload.
type ReviewProfileRequest struct {
	Approved *bool `json:"approved,omitempty"`
	Blocked  *bool `json:"blocked,omitempty"`
}

// ProfileView decorates a profile with its completion percentage.
type ProfileView struct {
	models.Profile
	Completion int `json:"completion_percent"`
}

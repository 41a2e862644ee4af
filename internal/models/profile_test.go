package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func filledStudentProfile() *Profile {
	return &Profile{
		Role:             RoleStudent,
		FullName:         "Asha Verma",
		Phone:            strPtr("9876543210"),
		StudentID:        strPtr("CS21B042"),
		YearOfStudy:      intPtr(3),
		DepartmentID:     strPtr("dept-cse"),
		RoomID:           strPtr("room-204"),
		PermanentAddress: strPtr("12 Lake Road, Pune"),
		LocalAddress:     strPtr("Hostel Block B"),
		GuardianName:     strPtr("R Verma"),
		GuardianPhone:    strPtr("9876500000"),
	}
}

func TestCompletionPercentFullStudentProfile(t *testing.T) {
	require.Equal(t, 100, filledStudentProfile().CompletionPercent())
}

func TestCompletionPercentCountsMissingFields(t *testing.T) {
	p := filledStudentProfile()
	p.RoomID = nil
	require.Equal(t, 90, p.CompletionPercent())

	p.GuardianPhone = strPtr("")
	require.Equal(t, 80, p.CompletionPercent())
}

func TestCompletionPercentEmptyStudentProfile(t *testing.T) {
	p := &Profile{Role: RoleStudent}
	require.Equal(t, 0, p.CompletionPercent())
}

func TestCompletionPercentStaffAlwaysComplete(t *testing.T) {
	for _, role := range []UserRole{RoleAdvisor, RoleHOD, RoleWarden, RoleAdmin} {
		p := &Profile{Role: role}
		require.Equal(t, 100, p.CompletionPercent())
	}
}

func TestCompletionPercentZeroYearOfStudyNotCounted(t *testing.T) {
	p := filledStudentProfile()
	p.YearOfStudy = intPtr(0)
	require.Equal(t, 90, p.CompletionPercent())
}

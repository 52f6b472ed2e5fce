package models

import "github.com/volatiletech/null/v8"

// Marital statuses accepted for a child.
const (
	ChildStatusSingle  = "Single"
	ChildStatusMarried = "Married"
)

// ChildFields are the writable columns of a student's child.
type ChildFields struct {
	StudentID       int64       `db:"student_id" json:"student_id" validate:"gt=0"`
	ChildName       null.String `db:"child_name" json:"child_name" validate:"omitempty,max=150"`
	ChildAge        null.Int    `db:"child_age" json:"child_age" validate:"omitempty,min=0,max=150"`
	ChildStatus     null.String `db:"child_status" json:"child_status" validate:"omitempty,oneof=Single Married"`
	ChildSchool     null.String `db:"child_school" json:"child_school" validate:"omitempty,max=150"`
	ChildOccupation null.String `db:"child_occupation" json:"child_occupation" validate:"omitempty,max=150"`
}

// Child is a dependent of a student.
type Child struct {
	ID int64 `db:"id" json:"id"`
	ChildFields
}

// ChildList is the paginated child listing.
type ChildList struct {
	Children []Child `json:"children"`
	Total    int     `json:"total"`
}

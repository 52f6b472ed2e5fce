package models

// Stats summarises record counts for the dashboard.
type Stats struct {
	TotalStudents  int `db:"total_students" json:"totalStudents"`
	TotalChildren  int `db:"total_children" json:"totalChildren"`
	TotalAdmins    int `db:"total_admins" json:"totalAdmins"`
	ActiveStudents int `db:"-" json:"activeStudents"`
}

package models

import "github.com/volatiletech/null/v8"

// StudentFields are the descriptive, nullable columns of a student profile.
type StudentFields struct {
	Department    null.String `db:"department" json:"department" validate:"omitempty,max=100"`
	Year          null.String `db:"year" json:"year" validate:"omitempty,max=50"`
	Level         null.String `db:"level" json:"level" validate:"omitempty,max=100"`
	LastName      null.String `db:"last_name" json:"last_name" validate:"omitempty,max=100"`
	FirstName     null.String `db:"first_name" json:"first_name" validate:"omitempty,max=100"`
	MiddleName    null.String `db:"middle_name" json:"middle_name" validate:"omitempty,max=100"`
	Nickname      null.String `db:"nickname" json:"nickname" validate:"omitempty,max=100"`
	BirthDate     Date        `db:"birth_date" json:"birth_date"`
	BirthPlace    null.String `db:"birth_place" json:"birth_place" validate:"omitempty,max=150"`
	Gender        null.String `db:"gender" json:"gender" validate:"omitempty,max=20"`
	Religion      null.String `db:"religion" json:"religion" validate:"omitempty,max=100"`
	Nationality   null.String `db:"nationality" json:"nationality" validate:"omitempty,max=100"`
	Address       null.String `db:"address" json:"address" validate:"omitempty,max=255"`
	ContactNumber null.String `db:"contact_number" json:"contact_number" validate:"omitempty,max=50"`

	FatherName        null.String `db:"father_name" json:"father_name" validate:"omitempty,max=150"`
	FatherAge         null.Int    `db:"father_age" json:"father_age" validate:"omitempty,min=0,max=150"`
	FatherEducation   null.String `db:"father_education" json:"father_education" validate:"omitempty,max=150"`
	FatherOccupation  null.String `db:"father_occupation" json:"father_occupation" validate:"omitempty,max=150"`
	FatherEmployer    null.String `db:"father_employer" json:"father_employer" validate:"omitempty,max=150"`
	FatherWorkPlace   null.String `db:"father_work_place" json:"father_work_place" validate:"omitempty,max=150"`
	FatherCitizenship null.String `db:"father_citizenship" json:"father_citizenship" validate:"omitempty,max=100"`
	FatherContact     null.String `db:"father_contact" json:"father_contact" validate:"omitempty,max=100"`

	MotherName        null.String `db:"mother_name" json:"mother_name" validate:"omitempty,max=150"`
	MotherAge         null.Int    `db:"mother_age" json:"mother_age" validate:"omitempty,min=0,max=150"`
	MotherEducation   null.String `db:"mother_education" json:"mother_education" validate:"omitempty,max=150"`
	MotherOccupation  null.String `db:"mother_occupation" json:"mother_occupation" validate:"omitempty,max=150"`
	MotherEmployer    null.String `db:"mother_employer" json:"mother_employer" validate:"omitempty,max=150"`
	MotherWorkPlace   null.String `db:"mother_work_place" json:"mother_work_place" validate:"omitempty,max=150"`
	MotherCitizenship null.String `db:"mother_citizenship" json:"mother_citizenship" validate:"omitempty,max=100"`
	MotherContact     null.String `db:"mother_contact" json:"mother_contact" validate:"omitempty,max=100"`

	GuardianName        null.String `db:"guardian_name" json:"guardian_name" validate:"omitempty,max=150"`
	GuardianAge         null.Int    `db:"guardian_age" json:"guardian_age" validate:"omitempty,min=0,max=150"`
	GuardianEducation   null.String `db:"guardian_education" json:"guardian_education" validate:"omitempty,max=150"`
	GuardianOccupation  null.String `db:"guardian_occupation" json:"guardian_occupation" validate:"omitempty,max=150"`
	GuardianEmployer    null.String `db:"guardian_employer" json:"guardian_employer" validate:"omitempty,max=150"`
	GuardianWorkPlace   null.String `db:"guardian_work_place" json:"guardian_work_place" validate:"omitempty,max=150"`
	GuardianCitizenship null.String `db:"guardian_citizenship" json:"guardian_citizenship" validate:"omitempty,max=100"`
	GuardianContact     null.String `db:"guardian_contact" json:"guardian_contact" validate:"omitempty,max=100"`
}

// Student is a stored student profile. PhotoPath is only set by photo uploads.
type Student struct {
	ID        int64       `db:"id" json:"id"`
	PhotoPath null.String `db:"photo_path" json:"photo_path"`
	StudentFields
}

// FullName joins first and last name the way search matches them.
func (s Student) FullName() string {
	switch {
	case s.FirstName.Valid && s.LastName.Valid:
		return s.FirstName.String + " " + s.LastName.String
	case s.FirstName.Valid:
		return s.FirstName.String
	default:
		return s.LastName.String
	}
}

// StudentList is the paginated student listing.
type StudentList struct {
	Students []Student `json:"students"`
	Total    int       `json:"total"`
}

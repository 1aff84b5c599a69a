package model

// Batch is a cohort of students inside a department.
type Batch struct {
	ID           int64  `json:"id"`
	Name         string `json:"name" validate:"required,max=255"`
	ShortName    string `json:"short_name" validate:"required,max=64"`
	CollegeID    int64  `json:"college_id" validate:"required,gt=0"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

type BatchPatch struct {
	Name         *string `json:"name"`
	ShortName    *string `json:"short_name"`
	CollegeID    *int64  `json:"college_id"`
	DepartmentID *int64  `json:"department_id"`
}

func (p BatchPatch) Apply(b *Batch) {
	setString(&b.Name, p.Name)
	setString(&b.ShortName, p.ShortName)
	setInt(&b.CollegeID, p.CollegeID)
	setInt(&b.DepartmentID, p.DepartmentID)
}

package model

// Department belongs to a College.
type Department struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required,max=255"`
	ShortName string `json:"short_name" validate:"required,max=64"`
	CollegeID int64  `json:"college_id" validate:"required,gt=0"`
}

type DepartmentPatch struct {
	Name      *string `json:"name"`
	ShortName *string `json:"short_name"`
	CollegeID *int64  `json:"college_id"`
}

func (p DepartmentPatch) Apply(d *Department) {
	setString(&d.Name, p.Name)
	setString(&d.ShortName, p.ShortName)
	setInt(&d.CollegeID, p.CollegeID)
}

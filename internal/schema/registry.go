package schema

import (
	"campusapi/internal/model"
)

func fk(table string) *ForeignKey { return &ForeignKey{Table: table, Column: "id"} }

func nameColumns() []Column {
	return []Column{
		{Name: "name", Type: Text},
		{Name: "short_name", Type: Text},
	}
}

// accountColumns are shared by faculties and students.
func accountColumns() []Column {
	return []Column{
		{Name: "username", Type: Text, Unique: true, Index: true},
		{Name: "hashed_pwd", Type: Text, Nullable: true, Default: "''"},
		{Name: "first_name", Type: Text},
		{Name: "last_name", Type: Text, Nullable: true},
		{Name: "email_id", Type: Text, Nullable: true},
		{Name: "phone_number", Type: Text, Nullable: true},
		{Name: "gender", Type: Text, Nullable: true, Default: "'M'"},
		{Name: "college_id", Type: Integer, References: fk("colleges")},
		{Name: "department_id", Type: Integer, References: fk("departments")},
	}
}

var Colleges = Entity[model.College]{
	Table: &Table{
		Name:       "colleges",
		PrimaryKey: "id",
		Columns:    nameColumns(),
	},
	ID: func(v *model.College) *int64 { return &v.ID },
	Fields: func(v *model.College) []any {
		return []any{&v.Name, &v.ShortName}
	},
}

var Departments = Entity[model.Department]{
	Table: &Table{
		Name:       "departments",
		PrimaryKey: "id",
		Columns: append(nameColumns(),
			Column{Name: "college_id", Type: Integer, References: fk("colleges")},
		),
	},
	ID: func(v *model.Department) *int64 { return &v.ID },
	Fields: func(v *model.Department) []any {
		return []any{&v.Name, &v.ShortName, &v.CollegeID}
	},
}

var Batches = Entity[model.Batch]{
	Table: &Table{
		Name:       "batches",
		PrimaryKey: "id",
		Columns: append(nameColumns(),
			Column{Name: "college_id", Type: Integer, References: fk("colleges")},
			Column{Name: "department_id", Type: Integer, References: fk("departments")},
		),
	},
	ID: func(v *model.Batch) *int64 { return &v.ID },
	Fields: func(v *model.Batch) []any {
		return []any{&v.Name, &v.ShortName, &v.CollegeID, &v.DepartmentID}
	},
}

var Courses = Entity[model.Course]{
	Table: &Table{
		Name:       "courses",
		PrimaryKey: "id",
		Columns: append(nameColumns(),
			Column{Name: "language", Type: Text},
			Column{Name: "concepts", Type: Text},
			Column{Name: "is_archived", Type: Boolean, Default: "FALSE"},
		),
	},
	ID: func(v *model.Course) *int64 { return &v.ID },
	Fields: func(v *model.Course) []any {
		return []any{&v.Name, &v.ShortName, &v.Language, &v.Concepts, &v.IsArchived}
	},
}

var Faculties = Entity[model.Faculty]{
	Table: &Table{
		Name:       "faculties",
		PrimaryKey: "id",
		Columns: append(accountColumns(),
			Column{Name: "is_admin", Type: Boolean, Default: "FALSE"},
		),
	},
	ID: func(v *model.Faculty) *int64 { return &v.ID },
	Fields: func(v *model.Faculty) []any {
		return []any{
			&v.Username, &v.HashedPwd, &v.FirstName, &v.LastName, &v.EmailID,
			&v.PhoneNumber, &v.Gender, &v.CollegeID, &v.DepartmentID, &v.IsAdmin,
		}
	},
	Defaults: func(v *model.Faculty) {
		accountDefaults(&v.HashedPwd, &v.Gender)
	},
}

var Students = Entity[model.Student]{
	Table: &Table{
		Name:       "students",
		PrimaryKey: "id",
		Columns: append(accountColumns(),
			Column{Name: "batch_id", Type: Integer, References: fk("batches")},
		),
	},
	ID: func(v *model.Student) *int64 { return &v.ID },
	Fields: func(v *model.Student) []any {
		return []any{
			&v.Username, &v.HashedPwd, &v.FirstName, &v.LastName, &v.EmailID,
			&v.PhoneNumber, &v.Gender, &v.CollegeID, &v.DepartmentID, &v.BatchID,
		}
	},
	Defaults: func(v *model.Student) {
		accountDefaults(&v.HashedPwd, &v.Gender)
	},
}

var BatchCourseAssignments = Entity[model.BatchCourseAssignment]{
	Table: &Table{
		Name:       "course_batch_assignments",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "batch_id", Type: Integer, References: fk("batches")},
			{Name: "course_id", Type: Integer, References: fk("courses")},
			{Name: "faculty_id", Type: Integer, References: fk("faculties")},
		},
		Uniques: []UniqueConstraint{
			{Name: "uq_batch_id_course_id", Columns: []string{"batch_id", "course_id"}},
		},
	},
	ID: func(v *model.BatchCourseAssignment) *int64 { return &v.ID },
	Fields: func(v *model.BatchCourseAssignment) []any {
		return []any{&v.BatchID, &v.CourseID, &v.FacultyID}
	},
}

func accountDefaults(hashedPwd, gender **string) {
	if *hashedPwd == nil {
		empty := ""
		*hashedPwd = &empty
	}
	if *gender == nil {
		m := "M"
		*gender = &m
	}
}

// Tables lists every table with parents before the tables that reference them.
func Tables() []*Table {
	return []*Table{
		Colleges.Table,
		Departments.Table,
		Batches.Table,
		Courses.Table,
		Faculties.Table,
		Students.Table,
		BatchCourseAssignments.Table,
	}
}

// Lookup returns the table with the given name.
func Lookup(name string) (*Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Check verifies every entity's accessors against its table.
func Check() error {
	checks := []func() error{
		Colleges.check,
		Departments.check,
		Batches.check,
		Courses.check,
		Faculties.check,
		Students.check,
		BatchCourseAssignments.check,
	}
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

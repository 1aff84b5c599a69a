package model

// Faculty is a teaching staff account. HashedPwd is never serialized;
// callers set it through Password, which is hashed before persisting.
type Faculty struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username" validate:"required,max=64"`
	HashedPwd    *string `json:"-"`
	Password     string  `json:"password,omitempty"`
	FirstName    string  `json:"first_name" validate:"required,max=128"`
	LastName     *string `json:"last_name" validate:"omitempty,max=128"`
	EmailID      *string `json:"email_id" validate:"omitempty,max=255"`
	PhoneNumber  *string `json:"phone_number" validate:"omitempty,max=32"`
	Gender       *string `json:"gender"`
	CollegeID    int64   `json:"college_id" validate:"required,gt=0"`
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	IsAdmin      bool    `json:"is_admin"`
}

// TakePassword returns the plaintext password and clears it.
func (f *Faculty) TakePassword() string {
	pw := f.Password
	f.Password = ""
	return pw
}

func (f *Faculty) SetHashedPassword(hash string) { f.HashedPwd = &hash }

type FacultyPatch struct {
	Username     *string `json:"username"`
	Password     *string `json:"password"`
	HashedPwd    *string `json:"-"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	EmailID      *string `json:"email_id"`
	PhoneNumber  *string `json:"phone_number"`
	Gender       *string `json:"gender"`
	CollegeID    *int64  `json:"college_id"`
	DepartmentID *int64  `json:"department_id"`
	IsAdmin      *bool   `json:"is_admin"`
}

func (p *FacultyPatch) TakePassword() string {
	if p.Password == nil {
		return ""
	}
	pw := *p.Password
	p.Password = nil
	return pw
}

func (p *FacultyPatch) SetHashedPassword(hash string) { p.HashedPwd = &hash }

func (p FacultyPatch) Apply(f *Faculty) {
	setString(&f.Username, p.Username)
	setOptional(&f.HashedPwd, p.HashedPwd)
	setString(&f.FirstName, p.FirstName)
	setOptional(&f.LastName, p.LastName)
	setOptional(&f.EmailID, p.EmailID)
	setOptional(&f.PhoneNumber, p.PhoneNumber)
	setOptional(&f.Gender, p.Gender)
	setInt(&f.CollegeID, p.CollegeID)
	setInt(&f.DepartmentID, p.DepartmentID)
	if p.IsAdmin != nil {
		f.IsAdmin = *p.IsAdmin
	}
}

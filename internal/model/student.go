package model

// Student mirrors Faculty's account fields and additionally belongs to a Batch.
// CollegeID and DepartmentID are derivable from the batch but stored for
// direct lookups.
type Student struct {
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
	BatchID      int64   `json:"batch_id" validate:"required,gt=0"`
}

func (s *Student) TakePassword() string {
	pw := s.Password
	s.Password = ""
	return pw
}

func (s *Student) SetHashedPassword(hash string) { s.HashedPwd = &hash }

type StudentPatch struct {
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
	BatchID      *int64  `json:"batch_id"`
}

func (p *StudentPatch) TakePassword() string {
	if p.Password == nil {
		return ""
	}
	pw := *p.Password
	p.Password = nil
	return pw
}

func (p *StudentPatch) SetHashedPassword(hash string) { p.HashedPwd = &hash }

func (p StudentPatch) Apply(s *Student) {
	setString(&s.Username, p.Username)
	setOptional(&s.HashedPwd, p.HashedPwd)
	setString(&s.FirstName, p.FirstName)
	setOptional(&s.LastName, p.LastName)
	setOptional(&s.EmailID, p.EmailID)
	setOptional(&s.PhoneNumber, p.PhoneNumber)
	setOptional(&s.Gender, p.Gender)
	setInt(&s.CollegeID, p.CollegeID)
	setInt(&s.DepartmentID, p.DepartmentID)
	setInt(&s.BatchID, p.BatchID)
}

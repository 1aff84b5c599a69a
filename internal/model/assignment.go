package model

// BatchCourseAssignment assigns a faculty member to teach a course to a batch.
// A (batch, course) pair has at most one assignment.
type BatchCourseAssignment struct {
	ID        int64 `json:"id"`
	BatchID   int64 `json:"batch_id" validate:"required,gt=0"`
	CourseID  int64 `json:"course_id" validate:"required,gt=0"`
	FacultyID int64 `json:"faculty_id" validate:"required,gt=0"`
}

type BatchCourseAssignmentPatch struct {
	BatchID   *int64 `json:"batch_id"`
	CourseID  *int64 `json:"course_id"`
	FacultyID *int64 `json:"faculty_id"`
}

func (p BatchCourseAssignmentPatch) Apply(a *BatchCourseAssignment) {
	setInt(&a.BatchID, p.BatchID)
	setInt(&a.CourseID, p.CourseID)
	setInt(&a.FacultyID, p.FacultyID)
}

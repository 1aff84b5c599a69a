package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusapi/internal/config"
	"campusapi/internal/database"
	"campusapi/internal/database/dialect"
	"campusapi/internal/model"
	"campusapi/internal/schema"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	ctx         context.Context
	s           *database.Session
	colleges    *Repository[model.College]
	departments *Repository[model.Department]
	batches     *Repository[model.Batch]
	courses     *Repository[model.Course]
	faculties   *Repository[model.Faculty]
	students    *Repository[model.Student]
	assignments *Repository[model.BatchCourseAssignment]
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	eng, err := database.Initialize(ctx, config.DatabaseConfig{
		Prefix:   "sqlite:///",
		FilePath: filepath.Join(t.TempDir(), "campus.db"),
	}, schema.Tables())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	s, err := eng.OpenSession(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	d := eng.Dialect()
	return &fixture{
		ctx:         ctx,
		s:           s,
		colleges:    New(d, schema.Colleges),
		departments: New(d, schema.Departments),
		batches:     New(d, schema.Batches),
		courses:     New(d, schema.Courses),
		faculties:   New(d, schema.Faculties),
		students:    New(d, schema.Students),
		assignments: New(d, schema.BatchCourseAssignments),
	}
}

// seed creates one row of every entity type, parents first.
func (f *fixture) seed(t *testing.T) (college, dept, batch, course, faculty int64) {
	t.Helper()
	c, err := f.colleges.Create(f.ctx, f.s, model.College{Name: "Engg", ShortName: "ENG"})
	require.NoError(t, err)
	d, err := f.departments.Create(f.ctx, f.s, model.Department{Name: "CS", ShortName: "CS", CollegeID: c.ID})
	require.NoError(t, err)
	b, err := f.batches.Create(f.ctx, f.s, model.Batch{Name: "2024", ShortName: "24", CollegeID: c.ID, DepartmentID: d.ID})
	require.NoError(t, err)
	co, err := f.courses.Create(f.ctx, f.s, model.Course{Name: "Go", ShortName: "GO", Language: "en", Concepts: "channels"})
	require.NoError(t, err)
	fa, err := f.faculties.Create(f.ctx, f.s, model.Faculty{Username: "ada", FirstName: "Ada", CollegeID: c.ID, DepartmentID: d.ID})
	require.NoError(t, err)
	return c.ID, d.ID, b.ID, co.ID, fa.ID
}

func requireProcessing(t *testing.T, err error, kind database.ViolationKind) *ProcessingError {
	t.Helper()
	require.ErrorIs(t, err, ErrProcessing)
	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, kind, pe.Kind)
	return pe
}

func TestRepository_ConcreteScenario(t *testing.T) {
	f := setup(t)

	c, err := f.colleges.Create(f.ctx, f.s, model.College{Name: "Engg", ShortName: "ENG"})
	require.NoError(t, err)
	assert.Equal(t, model.College{ID: 1, Name: "Engg", ShortName: "ENG"}, *c)

	d, err := f.departments.Create(f.ctx, f.s, model.Department{Name: "CS", ShortName: "CS", CollegeID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Department{ID: 1, Name: "CS", ShortName: "CS", CollegeID: 1}, *d)

	_, err = f.departments.Create(f.ctx, f.s, model.Department{Name: "EE", ShortName: "EE", CollegeID: 999})
	pe := requireProcessing(t, err, database.ForeignKeyViolation)
	assert.Equal(t, "departments", pe.Entity)

	got, err := f.departments.Get(f.ctx, f.s, 1)
	require.NoError(t, err)
	assert.Equal(t, "CS", got.Name)

	err = f.colleges.Delete(f.ctx, f.s, 1)
	pe = requireProcessing(t, err, database.ForeignKeyViolation)
	assert.Equal(t, "colleges", pe.Entity)
	assert.Equal(t, int64(1), pe.ID)

	_, err = f.colleges.Get(f.ctx, f.s, 1)
	assert.NoError(t, err, "blocked delete must leave the row in place")
}

func TestRepository_CreateAssignsKey(t *testing.T) {
	f := setup(t)
	cid, did, bid, _, _ := f.seed(t)

	in := model.Student{
		Username:     "linus",
		FirstName:    "Linus",
		EmailID:      ptr("linus@example.com"),
		Gender:       ptr("M"),
		HashedPwd:    ptr("hash"),
		CollegeID:    cid,
		DepartmentID: did,
		BatchID:      bid,
	}
	out, err := f.students.Create(f.ctx, f.s, in)
	require.NoError(t, err)
	assert.NotZero(t, out.ID)

	in.ID = out.ID
	assert.Equal(t, in, *out)

	fetched, err := f.students.Get(f.ctx, f.s, out.ID)
	require.NoError(t, err)
	assert.Equal(t, *out, *fetched)
	assert.Nil(t, fetched.LastName)
}

func TestRepository_CreateIgnoresCallerKeyAndAppliesDefaults(t *testing.T) {
	f := setup(t)
	cid, did, _, _, _ := f.seed(t)

	out, err := f.faculties.Create(f.ctx, f.s, model.Faculty{
		ID:           500,
		Username:     "grace",
		FirstName:    "Grace",
		CollegeID:    cid,
		DepartmentID: did,
	})
	require.NoError(t, err)
	assert.NotEqual(t, int64(500), out.ID)
	require.NotNil(t, out.Gender)
	assert.Equal(t, "M", *out.Gender)
	require.NotNil(t, out.HashedPwd)
	assert.Equal(t, "", *out.HashedPwd)
	assert.False(t, out.IsAdmin)
}

func TestRepository_Validation(t *testing.T) {
	f := setup(t)

	_, err := f.colleges.Create(f.ctx, f.s, model.College{Name: "No short name"})
	pe := requireProcessing(t, err, database.ValidationFailure)
	assert.Contains(t, pe.Reason, "short_name")

	_, err = f.departments.Create(f.ctx, f.s, model.Department{Name: "CS", ShortName: "CS"})
	requireProcessing(t, err, database.ValidationFailure)

	_, err = f.faculties.Create(f.ctx, f.s, model.Faculty{
		Username: "x", Gender: ptr("Q"), CollegeID: 1, DepartmentID: 1,
	})
	pe = requireProcessing(t, err, database.ValidationFailure)
	assert.Contains(t, pe.Reason, "first_name")
}

func TestRepository_MissingKey(t *testing.T) {
	f := setup(t)

	_, err := f.colleges.Get(f.ctx, f.s, 42)
	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "colleges", nf.Entity)
	assert.Equal(t, int64(42), nf.ID)
	assert.EqualError(t, err, "colleges with id 42 not found")

	_, err = f.colleges.Update(f.ctx, f.s, 42, model.CollegePatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.colleges.Delete(f.ctx, f.s, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ForeignKeysEnforced(t *testing.T) {
	f := setup(t)
	cid, did, bid, coid, faid := f.seed(t)
	const missing = 999

	tests := []struct {
		name   string
		create func() error
	}{
		{"department.college_id", func() error {
			_, err := f.departments.Create(f.ctx, f.s, model.Department{Name: "n", ShortName: "n", CollegeID: missing})
			return err
		}},
		{"batch.college_id", func() error {
			_, err := f.batches.Create(f.ctx, f.s, model.Batch{Name: "n", ShortName: "n", CollegeID: missing, DepartmentID: did})
			return err
		}},
		{"batch.department_id", func() error {
			_, err := f.batches.Create(f.ctx, f.s, model.Batch{Name: "n", ShortName: "n", CollegeID: cid, DepartmentID: missing})
			return err
		}},
		{"faculty.college_id", func() error {
			_, err := f.faculties.Create(f.ctx, f.s, model.Faculty{Username: "f1", FirstName: "f", CollegeID: missing, DepartmentID: did})
			return err
		}},
		{"faculty.department_id", func() error {
			_, err := f.faculties.Create(f.ctx, f.s, model.Faculty{Username: "f2", FirstName: "f", CollegeID: cid, DepartmentID: missing})
			return err
		}},
		{"student.college_id", func() error {
			_, err := f.students.Create(f.ctx, f.s, model.Student{Username: "s1", FirstName: "s", CollegeID: missing, DepartmentID: did, BatchID: bid})
			return err
		}},
		{"student.department_id", func() error {
			_, err := f.students.Create(f.ctx, f.s, model.Student{Username: "s2", FirstName: "s", CollegeID: cid, DepartmentID: missing, BatchID: bid})
			return err
		}},
		{"student.batch_id", func() error {
			_, err := f.students.Create(f.ctx, f.s, model.Student{Username: "s3", FirstName: "s", CollegeID: cid, DepartmentID: did, BatchID: missing})
			return err
		}},
		{"assignment.batch_id", func() error {
			_, err := f.assignments.Create(f.ctx, f.s, model.BatchCourseAssignment{BatchID: missing, CourseID: coid, FacultyID: faid})
			return err
		}},
		{"assignment.course_id", func() error {
			_, err := f.assignments.Create(f.ctx, f.s, model.BatchCourseAssignment{BatchID: bid, CourseID: missing, FacultyID: faid})
			return err
		}},
		{"assignment.faculty_id", func() error {
			_, err := f.assignments.Create(f.ctx, f.s, model.BatchCourseAssignment{BatchID: bid, CourseID: coid, FacultyID: missing})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireProcessing(t, tt.create(), database.ForeignKeyViolation)
		})
	}
}

func TestRepository_Uniqueness(t *testing.T) {
	f := setup(t)
	cid, did, bid, coid, faid := f.seed(t)

	_, err := f.faculties.Create(f.ctx, f.s, model.Faculty{Username: "ada", FirstName: "Other", CollegeID: cid, DepartmentID: did})
	requireProcessing(t, err, database.UniqueViolation)

	s := model.Student{Username: "sam", FirstName: "Sam", CollegeID: cid, DepartmentID: did, BatchID: bid}
	_, err = f.students.Create(f.ctx, f.s, s)
	require.NoError(t, err)
	_, err = f.students.Create(f.ctx, f.s, s)
	requireProcessing(t, err, database.UniqueViolation)

	a := model.BatchCourseAssignment{BatchID: bid, CourseID: coid, FacultyID: faid}
	_, err = f.assignments.Create(f.ctx, f.s, a)
	require.NoError(t, err)
	_, err = f.assignments.Create(f.ctx, f.s, a)
	requireProcessing(t, err, database.UniqueViolation)
}

func TestRepository_PartialUpdate(t *testing.T) {
	f := setup(t)
	cid, did, _, _, faid := f.seed(t)

	before, err := f.faculties.Get(f.ctx, f.s, faid)
	require.NoError(t, err)

	after, err := f.faculties.Update(f.ctx, f.s, faid, model.FacultyPatch{EmailID: ptr("ada@example.com")})
	require.NoError(t, err)

	want := *before
	want.EmailID = ptr("ada@example.com")
	assert.Equal(t, want, *after)

	fetched, err := f.faculties.Get(f.ctx, f.s, faid)
	require.NoError(t, err)
	assert.Equal(t, want, *fetched)
	assert.Equal(t, cid, fetched.CollegeID)
	assert.Equal(t, did, fetched.DepartmentID)
}

func TestRepository_UpdateValidatesMergedRow(t *testing.T) {
	f := setup(t)
	_, _, _, coid, _ := f.seed(t)

	_, err := f.courses.Update(f.ctx, f.s, coid, model.CoursePatch{Name: ptr("")})
	requireProcessing(t, err, database.ValidationFailure)

	_, err = f.courses.Update(f.ctx, f.s, coid, &model.CoursePatch{IsArchived: ptr(true)})
	require.NoError(t, err)

	got, err := f.courses.Get(f.ctx, f.s, coid)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name, "rejected update must not be applied")
	assert.True(t, got.IsArchived)
}

func TestRepository_UpdateConstraintViolation(t *testing.T) {
	f := setup(t)
	cid, did, _, _, faid := f.seed(t)

	other, err := f.faculties.Create(f.ctx, f.s, model.Faculty{Username: "grace", FirstName: "Grace", CollegeID: cid, DepartmentID: did})
	require.NoError(t, err)

	_, err = f.faculties.Update(f.ctx, f.s, other.ID, model.FacultyPatch{Username: ptr("ada")})
	pe := requireProcessing(t, err, database.UniqueViolation)
	assert.Equal(t, other.ID, pe.ID)

	_, err = f.faculties.Update(f.ctx, f.s, faid, model.FacultyPatch{DepartmentID: ptr(int64(999))})
	requireProcessing(t, err, database.ForeignKeyViolation)

	got, err := f.faculties.Get(f.ctx, f.s, faid)
	require.NoError(t, err)
	assert.Equal(t, did, got.DepartmentID)
}

func TestRepository_DeleteIsTerminal(t *testing.T) {
	f := setup(t)

	c, err := f.colleges.Create(f.ctx, f.s, model.College{Name: "Arts", ShortName: "ART"})
	require.NoError(t, err)

	require.NoError(t, f.colleges.Delete(f.ctx, f.s, c.ID))

	_, err = f.colleges.Get(f.ctx, f.s, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.colleges.Delete(f.ctx, f.s, c.ID), ErrNotFound)
}

func TestRepository_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	eng, err := database.Initialize(ctx, config.DatabaseConfig{
		Prefix:   "sqlite:///",
		FilePath: filepath.Join(t.TempDir(), "campus.db"),
	}, schema.Tables())
	require.NoError(t, err)
	defer eng.Close()

	repo := New(eng.Dialect(), schema.Courses)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- eng.WithSession(ctx, func(s *database.Session) error {
				_, err := repo.Create(ctx, s, model.Course{Name: "Go", ShortName: "GO", Language: "en", Concepts: "c"})
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var n int
	require.NoError(t, eng.DB().QueryRow(`SELECT count(*) FROM courses`).Scan(&n))
	assert.Equal(t, workers, n)
}

func TestRepository_StoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	s := database.NewSession(conn)
	defer s.Close()

	repo := New(dialect.SQLite, schema.Colleges)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "colleges" ("name", "short_name") VALUES (?, ?) RETURNING "id", "name", "short_name"`)).
		WithArgs("Engg", "ENG").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "short_name"}).AddRow(1, "Engg", "ENG"))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	_, err = repo.Create(context.Background(), s, model.College{Name: "Engg", ShortName: "ENG"})
	pe := requireProcessing(t, err, StoreFailure)
	assert.Equal(t, "store unavailable", pe.Reason)
	assert.NotContains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessingError_Error(t *testing.T) {
	err := &ProcessingError{Entity: "departments", Op: "create", Kind: database.ForeignKeyViolation, Reason: "foreign_key: FOREIGN KEY constraint failed"}
	assert.Equal(t, "cannot create departments: foreign_key: FOREIGN KEY constraint failed", err.Error())

	err.ID = 3
	err.Op = "update"
	assert.Equal(t, "cannot update departments with id 3: foreign_key: FOREIGN KEY constraint failed", err.Error())
	assert.ErrorIs(t, err, ErrProcessing)
	assert.NotErrorIs(t, err, ErrNotFound)
}

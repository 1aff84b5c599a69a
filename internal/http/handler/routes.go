package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"campusapi/internal/database/dialect"
	"campusapi/internal/http/middleware"
	"campusapi/internal/model"
	"campusapi/internal/repository"
	"campusapi/internal/schema"
	"campusapi/internal/service"
)

// Store is what the routes need from the persistence engine.
// *database.Engine satisfies it.
type Store interface {
	middleware.SessionOpener
	DB() *sql.DB
	Dialect() dialect.Dialect
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every entity route runs inside one session opened by middleware.Session.
func RegisterRoutes(app *fiber.App, store Store, kycSvc service.KYCService) {
	app.Get("/health", HealthCheck(store.DB()))
	app.Get("/healthz", LivenessProbe())

	d := store.Dialect()
	session := middleware.Session(store)

	mountEntity[model.College, model.CollegePatch](
		app.Group("/colleges", session), repository.New(d, schema.Colleges))
	mountEntity[model.Department, model.DepartmentPatch](
		app.Group("/departments", session), repository.New(d, schema.Departments))
	mountEntity[model.Batch, model.BatchPatch](
		app.Group("/batches", session), repository.New(d, schema.Batches))
	mountEntity[model.Course, model.CoursePatch](
		app.Group("/courses", session), repository.New(d, schema.Courses))
	mountEntity[model.Faculty, model.FacultyPatch](
		app.Group("/faculties", session), repository.New(d, schema.Faculties))
	mountEntity[model.Student, model.StudentPatch](
		app.Group("/students", session), repository.New(d, schema.Students))
	mountEntity[model.BatchCourseAssignment, model.BatchCourseAssignmentPatch](
		app.Group("/batch-course-assignments", session), repository.New(d, schema.BatchCourseAssignments))

	app.Post("/integration/create_request", CreateKYCRequest(kycSvc))
	app.Post("/fetch_id_data", FetchIDData(kycSvc))
	app.Post("/analyze/idcard", AnalyzeIDCard(kycSvc))
}

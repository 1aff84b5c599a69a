package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"campusapi/internal/database"
	"campusapi/internal/http/middleware"
	"campusapi/internal/pkg/auth"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/repository"
)

// EntityRepository is the persistence surface the CRUD handlers need.
// *repository.Repository[T] satisfies it.
type EntityRepository[T any] interface {
	Name() string
	Create(ctx context.Context, s *database.Session, v T) (*T, error)
	Get(ctx context.Context, s *database.Session, id int64) (*T, error)
	Update(ctx context.Context, s *database.Session, id int64, p repository.Patch[T]) (*T, error)
	Delete(ctx context.Context, s *database.Session, id int64) error
}

// credentialed bodies carry a write-only plaintext password.
type credentialed interface {
	TakePassword() string
	SetHashedPassword(hash string)
}

// CreateEntity decodes a T from the JSON body and inserts it.
func CreateEntity[T any](repo EntityRepository[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := middleware.SessionFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}

		var v T
		if err := c.BodyParser(&v); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := hashPassword(any(&v)); err != nil {
			return internalError(c, repo.Name(), err)
		}

		out, err := repo.Create(c.UserContext(), s, v)
		if err != nil {
			return writeRepoError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// GetEntity returns the row with the :id path parameter.
func GetEntity[T any](repo EntityRepository[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		s, ok := middleware.SessionFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}

		out, err := repo.Get(c.UserContext(), s, id)
		if err != nil {
			return writeRepoError(c, err)
		}
		return c.JSON(out)
	}
}

// UpdateEntity decodes a P from the JSON body and applies it to :id.
// Attributes absent from the body keep their stored values.
func UpdateEntity[T any, P repository.Patch[T]](repo EntityRepository[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		s, ok := middleware.SessionFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}

		var p P
		if err := c.BodyParser(&p); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := hashPassword(any(&p)); err != nil {
			return internalError(c, repo.Name(), err)
		}

		out, err := repo.Update(c.UserContext(), s, id, p)
		if err != nil {
			return writeRepoError(c, err)
		}
		return c.JSON(out)
	}
}

// DeleteEntity removes the row with the :id path parameter.
func DeleteEntity[T any](repo EntityRepository[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		s, ok := middleware.SessionFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}

		if err := repo.Delete(c.UserContext(), s, id); err != nil {
			return writeRepoError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

// mountEntity registers the four CRUD routes of one collection on r.
func mountEntity[T any, P repository.Patch[T]](r fiber.Router, repo EntityRepository[T]) {
	r.Post("/", CreateEntity(repo))
	r.Get("/:id", GetEntity(repo))
	r.Patch("/:id", UpdateEntity[T, P](repo))
	r.Delete("/:id", DeleteEntity(repo))
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// hashPassword replaces a plaintext password on v, if any, with its bcrypt hash.
func hashPassword(v any) error {
	cr, ok := v.(credentialed)
	if !ok {
		return nil
	}
	pw := cr.TakePassword()
	if pw == "" {
		return nil
	}
	hash, err := auth.HashPassword(pw)
	if err != nil {
		return err
	}
	cr.SetHashedPassword(hash)
	return nil
}

func internalError(c *fiber.Ctx, entity string, err error) error {
	logger.WithComponent("http").Error().
		Str("request_id", requestIDFromCtx(c)).
		Str("entity", entity).
		Err(err).
		Msg("request failed")
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fileapi/internal/model"
	"fileapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.FileService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/owners", CreateOwner(svc))
	app.Delete("/owners/:kind/:id", DeleteOwner(svc))
	app.Post("/owners/:kind/:id/restore", RestoreOwner(svc))
	app.Get("/owners/:kind/:id/files", ListFiles(svc))
	app.Post("/owners/:kind/:id/files", UploadFile(svc))

	app.Get("/files/:id", GetFile(svc))
	app.Patch("/files/:id", UpdateFile(svc))
	app.Delete("/files/:id", DeleteFile(svc))
}

// fileResponse adds the derived attributes of a file to its stored columns.
type fileResponse struct {
	model.File
	Name      string `json:"name"`
	Extension string `json:"extension"`
	URL       string `json:"url,omitempty"`
}

type fileListResponse struct {
	Items []fileResponse `json:"data"`
	Total int            `json:"total"`
}

type createOwnerRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type updateFileRequest struct {
	DisplayName *string        `json:"display_name"`
	Meta        map[string]any `json:"meta"`
}

func toFileResponse(svc service.FileService, f *model.File) fileResponse {
	res := fileResponse{File: *f, Name: f.Name(), Extension: f.Extension()}
	if u, ok := svc.URL(f); ok {
		res.URL = u
	}
	return res
}

func ownerFromParams(c *fiber.Ctx) model.OwnerRef {
	return model.OwnerRef{Kind: c.Params("kind"), ID: c.Params("id")}
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Reports whether the database is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateOwner godoc
// @Summary Register an owner
// @Tags owners
// @Accept json
// @Produce json
// @Param owner body createOwnerRequest true "Owner reference"
// @Success 201 {object} model.Owner
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /owners [post]
func CreateOwner(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createOwnerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		o, err := svc.CreateOwner(c.UserContext(), model.OwnerRef{Kind: req.Kind, ID: req.ID})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

// DeleteOwner godoc
// @Summary Delete an owner
// @Description Soft deletes the owner. With force=true the owner and all of its files are removed.
// @Tags owners
// @Param kind path string true "Owner kind"
// @Param id path string true "Owner id"
// @Param force query bool false "Remove the owner and its files"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /owners/{kind}/{id} [delete]
func DeleteOwner(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		force := c.QueryBool("force", false)
		if err := svc.DeleteOwner(c.UserContext(), ownerFromParams(c), force); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RestoreOwner godoc
// @Summary Restore a soft deleted owner
// @Tags owners
// @Produce json
// @Param kind path string true "Owner kind"
// @Param id path string true "Owner id"
// @Success 200 {object} model.Owner
// @Failure 404 {object} errorPayload
// @Router /owners/{kind}/{id}/restore [post]
func RestoreOwner(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := svc.RestoreOwner(c.UserContext(), ownerFromParams(c))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return writeServiceError(c, service.ErrOwnerNotFound)
			}
			return writeServiceError(c, err)
		}
		return c.JSON(o)
	}
}

// ListFiles godoc
// @Summary List an owner's files
// @Tags files
// @Produce json
// @Param kind path string true "Owner kind"
// @Param id path string true "Owner id"
// @Success 200 {object} fileListResponse
// @Failure 404 {object} errorPayload
// @Router /owners/{kind}/{id}/files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ListByOwner(c.UserContext(), ownerFromParams(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		out := fileListResponse{Items: make([]fileResponse, 0, len(res.Items)), Total: res.Total}
		for i := range res.Items {
			out.Items = append(out.Items, toFileResponse(svc, &res.Items[i]))
		}
		return c.JSON(out)
	}
}

// UploadFile godoc
// @Summary Attach a file to an owner
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Owner kind"
// @Param id path string true "Owner id"
// @Param file formData file true "File content"
// @Param disk formData string false "Target disk"
// @Param directory formData string false "Directory on the disk"
// @Param display_name formData string false "Display name"
// @Param meta formData string false "JSON object stored with the file"
// @Success 201 {object} fileResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /owners/{kind}/{id}/files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		opts := service.UploadOptions{
			Disk:        c.FormValue("disk"),
			Directory:   c.FormValue("directory"),
			DisplayName: c.FormValue("display_name"),
		}
		if raw := c.FormValue("meta"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &opts.Meta); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_META", "meta must be a JSON object")
			}
		}

		f, err := svc.Upload(c.UserContext(), ownerFromParams(c), service.FromFileHeader(fh), opts)
		if err != nil && !(f != nil && errors.Is(err, service.ErrCleanupFailed)) {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toFileResponse(svc, f))
	}
}

// GetFile godoc
// @Summary Get a file
// @Tags files
// @Produce json
// @Param id path string true "File id"
// @Success 200 {object} fileResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toFileResponse(svc, f))
	}
}

// UpdateFile godoc
// @Summary Update a file's display name or meta
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "File id"
// @Param file body updateFileRequest true "Fields to change"
// @Success 200 {object} fileResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [patch]
func UpdateFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateFileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		f, err := svc.Update(c.UserContext(), id, service.FileUpdate{DisplayName: req.DisplayName, Meta: req.Meta})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toFileResponse(svc, f))
	}
}

// DeleteFile godoc
// @Summary Delete a file
// @Tags files
// @Param id path string true "File id"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

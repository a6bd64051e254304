// Package api exposes the board and its mutations over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/runoshun/mdboard/internal/domain"
	"github.com/runoshun/mdboard/internal/usecase"
)

// Services holds the use cases behind the routes.
type Services struct {
	LoadBoard      *usecase.LoadBoard
	ShowTask       *usecase.ShowTask
	NewTask        *usecase.NewTask
	EditTask       *usecase.EditTask
	DeleteTask     *usecase.DeleteTask
	MoveTask       *usecase.MoveTask
	MoveToPosition *usecase.MoveToPosition
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc Services, logger *slog.Logger) {
	h := &handlers{svc: svc, logger: logger}
	e.GET("/api/board", h.getBoard)
	e.GET("/api/tasks/:id", h.getTask)
	e.POST("/api/tasks", h.postTask)
	e.PATCH("/api/tasks/:id", h.patchTask)
	e.DELETE("/api/tasks/:id", h.deleteTask)
	e.POST("/api/tasks/:id/move", h.moveTask)
	e.GET("/healthz", healthz)
}

type handlers struct {
	logger *slog.Logger
	svc    Services
}

// CreateRequest is the body of POST /api/tasks.
type CreateRequest struct {
	Order    *float64        `json:"order,omitempty"`
	Title    string          `json:"title"`
	Status   domain.Status   `json:"status,omitempty"`
	Priority domain.Priority `json:"priority,omitempty"`
	Assignee string          `json:"assignee,omitempty"`
	Due      string          `json:"due,omitempty"`
	Content  string          `json:"content,omitempty"`
	Labels   []string        `json:"labels,omitempty"`
}

// PatchRequest is the body of PATCH /api/tasks/:id.
// Absent fields are left unchanged; "" clears assignee and due.
type PatchRequest struct {
	Title        *string          `json:"title,omitempty"`
	Status       *domain.Status   `json:"status,omitempty"`
	Priority     *domain.Priority `json:"priority,omitempty"`
	Labels       *[]string        `json:"labels,omitempty"`
	Assignee     *string          `json:"assignee,omitempty"`
	Due          *string          `json:"due,omitempty"`
	Order        *float64         `json:"order,omitempty"`
	Content      *string          `json:"content,omitempty"`
	AddLabels    []string         `json:"addLabels,omitempty"`
	RemoveLabels []string         `json:"removeLabels,omitempty"`
}

// MoveRequest is the body of POST /api/tasks/:id/move.
// With Index set the server computes the order; otherwise Order is used as is.
type MoveRequest struct {
	Renumber map[string]float64 `json:"renumber,omitempty"`
	Index    *int               `json:"index,omitempty"`
	Status   domain.Status      `json:"status"`
	Order    float64            `json:"order"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *handlers) getBoard(c echo.Context) error {
	refresh, _ := strconv.ParseBool(c.QueryParam("refresh"))
	out, err := h.svc.LoadBoard.Execute(c.Request().Context(), usecase.LoadBoardInput{Refresh: refresh})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out.Board)
}

func (h *handlers) getTask(c echo.Context) error {
	out, err := h.svc.ShowTask.Execute(c.Request().Context(), usecase.ShowTaskInput{TaskID: c.Param("id")})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out.Task)
}

func (h *handlers) postTask(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	out, err := h.svc.NewTask.Execute(c.Request().Context(), usecase.NewTaskInput{
		Title:    req.Title,
		Status:   req.Status,
		Priority: req.Priority,
		Labels:   req.Labels,
		Assignee: req.Assignee,
		Due:      req.Due,
		Content:  req.Content,
		Order:    req.Order,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out.Task)
}

func (h *handlers) patchTask(c echo.Context) error {
	var req PatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	out, err := h.svc.EditTask.Execute(c.Request().Context(), usecase.EditTaskInput{
		TaskID: c.Param("id"),
		Patch: domain.TaskPatch{
			Title:    req.Title,
			Status:   req.Status,
			Priority: req.Priority,
			Labels:   req.Labels,
			Assignee: req.Assignee,
			Due:      req.Due,
			Order:    req.Order,
			Content:  req.Content,
		},
		AddLabels:    req.AddLabels,
		RemoveLabels: req.RemoveLabels,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out.Task)
}

func (h *handlers) deleteTask(c echo.Context) error {
	_, err := h.svc.DeleteTask.Execute(c.Request().Context(), usecase.DeleteTaskInput{TaskID: c.Param("id")})
	if err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) moveTask(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	ctx := c.Request().Context()
	id := c.Param("id")

	if req.Index != nil {
		out, err := h.svc.MoveToPosition.Execute(ctx, usecase.MoveToPositionInput{
			TaskID: id,
			Status: req.Status,
			Index:  *req.Index,
		})
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, out.Task)
	}

	out, err := h.svc.MoveTask.Execute(ctx, domain.MoveTaskInput{
		TaskID:    id,
		NewStatus: req.Status,
		NewOrder:  req.Order,
		Renumber:  req.Renumber,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out.Task)
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeNotFound   = "not_found"
	CodeValidation = "validation"
	CodeBadRequest = "bad_request"
	CodeInternal   = "internal"
)

// sentinelCodes maps domain sentinels reported as 400 to their codes.
var sentinelCodes = map[error]string{
	domain.ErrEmptyTitle:       "empty_title",
	domain.ErrInvalidStatus:    "invalid_status",
	domain.ErrInvalidPriority:  "invalid_priority",
	domain.ErrNoFieldsToUpdate: "no_fields",
	domain.ErrUnknownColumn:    "unknown_column",
}

// SentinelForCode returns the domain error a code stands for, or nil.
func SentinelForCode(code string) error {
	if code == CodeNotFound {
		return domain.ErrTaskNotFound
	}
	for err, c := range sentinelCodes {
		if c == code {
			return err
		}
	}
	return nil
}

// fail maps err to a status code and JSON error body.
func (h *handlers) fail(c echo.Context, err error) error {
	status, body := classify(err)
	if status == http.StatusInternalServerError && h.logger != nil {
		h.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return c.JSON(status, body)
}

func classify(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		body.Code = CodeNotFound
		return http.StatusNotFound, body
	case errors.As(err, &verr):
		body.Code = CodeValidation
		body.Fields = verr.Fields
		return http.StatusBadRequest, body
	}
	for sentinel, code := range sentinelCodes {
		if errors.Is(err, sentinel) {
			body.Code = code
			return http.StatusBadRequest, body
		}
	}
	body.Code = CodeInternal
	return http.StatusInternalServerError, body
}

func badRequest(c echo.Context, err error) error {
	msg := err.Error()
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		msg = "invalid request body"
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: CodeBadRequest})
}

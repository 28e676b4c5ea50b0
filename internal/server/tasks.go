package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"tasktrack/internal/models"
	"tasktrack/internal/storage/sqlstore"
)

// createTaskRequest mirrors the create payload. Pointers distinguish a
// missing field from a zero value; completed_steps is deliberately not
// checked against total_steps.
type createTaskRequest struct {
	Name           *string      `json:"name" binding:"required,max=255"`
	Deadline       *models.Date `json:"deadline" binding:"required"`
	TotalSteps     *int         `json:"total_steps" binding:"required"`
	CompletedSteps *int         `json:"completed_steps"`
	StepName       *string      `json:"step_name" binding:"required,max=255"`
	Type           *string      `json:"type" binding:"required,max=50"`
	ImageURL       *string      `json:"image_url" binding:"omitempty,max=255"`
}

func (r createTaskRequest) toNewTask() models.NewTask {
	t := models.NewTask{
		Name:       *r.Name,
		Deadline:   *r.Deadline,
		TotalSteps: *r.TotalSteps,
		StepName:   *r.StepName,
		Type:       *r.Type,
		ImageURL:   r.ImageURL,
	}
	if r.CompletedSteps != nil {
		t.CompletedSteps = *r.CompletedSteps
	}
	return t
}

// errTrailingData reports bytes after the first JSON value of a body.
var errTrailingData = errors.New("trailing data after JSON body")

// bindJSON decodes the body as exactly one JSON value and then validates it.
// gin's own JSON binding stops after the first value and ignores the rest.
func bindJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// handleCreateTask validates the payload and stores a new task.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		respondValidation(c, validationDetail(err))
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), req.toNewTask())
	if err != nil {
		s.respondInternal(c, err)
		return
	}
	tasksCreated.Inc()
	s.entry(c).WithField("task_id", task.ID).Info("task created")
	c.JSON(http.StatusOK, task)
}

// handleListTasks returns every stored task.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context())
	if err != nil {
		s.respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// handleAddStep advances a task by one step, never past total_steps.
func (s *Server) handleAddStep(c *gin.Context) {
	id, ok := parseID(c, "task_id")
	if !ok {
		return
	}

	err := s.store.AddStep(c.Request.Context(), id)
	if errors.Is(err, sqlstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	if err != nil {
		s.respondInternal(c, err)
		return
	}
	stepsAdded.Inc()
	s.entry(c).WithField("task_id", id).Debug("step added")
	c.JSON(http.StatusOK, gin.H{"message": "Step added successfully"})
}

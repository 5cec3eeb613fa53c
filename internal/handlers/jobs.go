package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shareview/analytics/internal/repos"
)

type JobsHandler struct {
	jobs repos.GenerationJobRepo
}

func NewJobsHandler(jobs repos.GenerationJobRepo) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// Get returns a generation job for status polling.
func (jh *JobsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	job, err := jh.jobs.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "job_lookup_failed", err)
		return
	}
	if job == nil {
		RespondError(c, http.StatusNotFound, "job_not_found", errors.New("generation job not found"))
		return
	}
	RespondOK(c, gin.H{"job": job})
}

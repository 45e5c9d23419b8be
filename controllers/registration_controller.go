// Package controllers provides the HTTP handlers of the portal.
// File: controllers/registration_controller.go
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"athmageeth-portal/logger"
	"athmageeth-portal/models"
	"athmageeth-portal/services"
	"athmageeth-portal/validation"
)

// RegistrationSubmitter runs the registration workflow.
type RegistrationSubmitter interface {
	Submit(ctx context.Context, in models.RegistrationInput) services.SubmitResult
}

// RegistrationController serves the public registration form.
type RegistrationController struct {
	Service RegistrationSubmitter
}

// NewRegistrationController initializes a RegistrationController.
func NewRegistrationController(service RegistrationSubmitter) *RegistrationController {
	return &RegistrationController{Service: service}
}

// Register accepts one JSON submission and answers with the workflow result.
func (rc *RegistrationController) Register(c *gin.Context) {
	var in models.RegistrationInput
	if err := c.ShouldBindBodyWith(&in, binding.JSON); err != nil {
		logger.Debug.Printf("[Register] undecodable payload from %s: %v", c.ClientIP(), err)
		body, _ := c.Get(gin.BodyBytesKey)
		raw, _ := body.([]byte)
		verr := validation.FromDecodeError(raw, err)
		c.JSON(http.StatusUnprocessableEntity, services.SubmitResult{
			Message: services.MsgCheckForm,
			Errors:  verr.Fields,
		})
		return
	}

	res := rc.Service.Submit(c.Request.Context(), in)
	c.JSON(submitStatus(res), res)
}

func submitStatus(res services.SubmitResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Message == services.MsgCheckForm:
		return http.StatusUnprocessableEntity
	case res.Message == services.MsgDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

var log = logging.Component("rest")

// GetUserFromContext extracts the authenticated user from gin.Context
func GetUserFromContext(c *gin.Context) *auth.UserSession {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := userInterface.(auth.UserSession)
	if !ok {
		return nil
	}
	return &user
}

// ownerID returns the id every module operation of the request is scoped to.
// Routes are mounted behind RequireAuth, so a missing user is a wiring bug.
func ownerID(c *gin.Context) string {
	if user := GetUserFromContext(c); user != nil {
		return user.ID
	}
	return ""
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	resp := errors.ToResponse(err)

	if code >= 500 {
		log.WithError(err).Errorf("❌ ERROR [%d] %s %s", code, c.Request.Method, c.Request.URL.Path)
	}

	body := gin.H{
		constants.ResponseError: resp.Message, // Legacy
		"message":               resp.Message,
		"code":                  resp.Code,
		"data":                  nil,
	}
	if resp.Details != nil {
		body["details"] = resp.Details
	}
	c.JSON(code, body)
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// BindJSONStrict binds JSON and enforces strict field validation (no unknown fields).
func BindJSONStrict(c *gin.Context, obj interface{}) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// BindOptionalJSON binds JSON when the request has a body and leaves obj
// untouched otherwise
func BindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil {
		return true
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	return BindJSON(c, obj)
}

// HandleGetEnvelope executes a read action and returns the result wrapped in a JSON key
// Response: { [key]: result }
func HandleGetEnvelope(c *gin.Context, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}

// HandleCreateEnvelope binds the body into in, runs the create action and
// returns the created object wrapped + message
// Response: { message: successMsg, [key]: created }
func HandleCreateEnvelope(c *gin.Context, key, successMsg string, in interface{}, action func() (interface{}, error)) {
	if !BindJSON(c, in) {
		return
	}
	respond(c, http.StatusCreated, key, successMsg, action)
}

// HandleUpdateEnvelope binds the body into patch, runs the update action and
// returns the updated object wrapped + message
// Response: { message: successMsg, [key]: updated }
func HandleUpdateEnvelope(c *gin.Context, key, successMsg string, patch interface{}, action func() (interface{}, error)) {
	if !BindJSON(c, patch) {
		return
	}
	respond(c, http.StatusOK, key, successMsg, action)
}

// HandleDeleteEnvelope executes a delete action and returns a success message
// Response: { message: successMsg }
func HandleDeleteEnvelope(c *gin.Context, successMsg string, action func() error) {
	if err := action(); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": successMsg})
}

func respond(c *gin.Context, status int, key, successMsg string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(status, gin.H{"message": successMsg, key: result})
}

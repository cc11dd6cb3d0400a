package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/versioning"
)

// ContextKeyAPIVersion holds the versioning.APIVersion the client asked for
const ContextKeyAPIVersion = "api_version"

// APIVersion negotiates the X-API-Version header. Requests for a version the
// server cannot answer are rejected; every response names the served version.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(versioning.Header, versioning.Current.String())

		requested, err := versioning.ParseVersion(c.GetHeader(versioning.Header))
		if err == nil && !versioning.Current.Supports(requested) {
			err = errUnsupported(requested)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				constants.ResponseError: err.Error(),
				"message":               err.Error(),
				"code":                  "UNSUPPORTED_API_VERSION",
				"data":                  nil,
			})
			return
		}

		c.Set(ContextKeyAPIVersion, requested)
		c.Next()
	}
}

type errUnsupported versioning.APIVersion

func (e errUnsupported) Error() string {
	return "API version " + versioning.APIVersion(e).String() + " is not supported, this server implements " + versioning.Current.String()
}

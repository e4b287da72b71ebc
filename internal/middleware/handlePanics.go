package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/alttext/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics turns a recovered panic into a 500 JSON failure.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error().Str("path", c.Request.URL.Path).Interface("panic", recovered).Msg("Recovered from panic")

		msg := "internal error"
		if err, ok := recovered.(error); ok {
			msg = err.Error()
		} else if s, ok := recovered.(string); ok {
			msg = s
		} else if recovered != nil {
			msg = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.Response{Success: false, Data: msg})
	}
}

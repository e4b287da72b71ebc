package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dfryer1193/alttext/api"
	"github.com/dfryer1193/alttext/media/application"
	"github.com/dfryer1193/alttext/media/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	nonceField  = "nonce"
	nonceHeader = "X-Alt-Text-Nonce"
)

// UpdatePassRunner runs one alt text update pass for the holder of token.
type UpdatePassRunner interface {
	RunUpdatePass(ctx context.Context, token string) (*domain.Summary, error)
}

type AltTextHandler struct {
	updater UpdatePassRunner
}

func NewAltTextHandler(updater UpdatePassRunner) *AltTextHandler {
	return &AltTextHandler{updater: updater}
}

// RunUpdate triggers an update pass. The nonce is taken from the "nonce" form field or the
// X-Alt-Text-Nonce header.
func (h *AltTextHandler) RunUpdate(c *gin.Context) {
	token := c.PostForm(nonceField)
	if token == "" {
		token = c.GetHeader(nonceHeader)
	}

	summary, err := h.updater.RunUpdatePass(c.Request.Context(), token)
	if errors.Is(err, domain.ErrUnauthorized) {
		log.Warn().Err(err).Str("clientIP", c.ClientIP()).Msg("Rejected alt text update")
		c.JSON(http.StatusForbidden, api.Response{Success: false, Data: "Insufficient permissions"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Alt text update failed")
		c.JSON(http.StatusInternalServerError, api.Response{Success: false, Data: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.Response{Success: true, Data: api.NewUpdateSummary(summary)})
}

// PreviewTitle returns the title that would be generated for the "file" query parameter.
func (h *AltTextHandler) PreviewTitle(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		c.JSON(http.StatusBadRequest, api.Response{Success: false, Data: "file is required"})
		return
	}

	c.JSON(http.StatusOK, api.Response{
		Success: true,
		Data:    api.TitlePreview{File: file, Title: application.GenerateTitleFromFilename(file)},
	})
}

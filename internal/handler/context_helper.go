package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

const maxBodyBytes = 1 << 20

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Invalid "+name)
	}
	return id, nil
}

// readPayload decodes the request body as a JSON object.
func readPayload(c *gin.Context) (validation.Payload, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unable to read request body")
	}
	return validation.Parse(body)
}

func listParams(c *gin.Context) query.Params {
	return query.FromValues(c.Request.URL.Query())
}

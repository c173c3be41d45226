package v1

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%v must be an integer", name)
	}

	return uint(id), nil
}

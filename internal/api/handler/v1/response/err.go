package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	statusCode int

	Msg string `json:"error"`
}

func (e *Err) Error() string {
	return e.Msg
}

func ErrBadRequest(err error) *Err {
	return &Err{
		statusCode: http.StatusBadRequest,
		Msg:        err.Error(),
	}
}

func ErrNotFound(err error) *Err {
	return &Err{
		statusCode: http.StatusNotFound,
		Msg:        err.Error(),
	}
}

func ErrMethodNotAllowed(err error) *Err {
	return &Err{
		statusCode: http.StatusMethodNotAllowed,
		Msg:        err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		statusCode: http.StatusInternalServerError,
		Msg:        err.Error(),
	}
}

// RenderErr writes the error payload. Server faults are logged and
// masked so internals never leak to clients.
func RenderErr(ctx *gin.Context, err *Err) {
	if err.statusCode == http.StatusInternalServerError {
		zap.L().Error("internal server error", zap.String("error", err.Msg))
		err.Msg = "internal server error"
	}

	ctx.AbortWithStatusJSON(err.statusCode, err)
}

package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/park285/tig-search-go/internal/httperror"
	"github.com/park285/tig-search-go/internal/middleware"
)

// writeError 는 오류를 표준 오류 응답으로 작성한다.
func writeError(c *gin.Context, err error) {
	status, payload := httperror.Response(err, middleware.GetRequestID(c))
	c.JSON(status, payload)
}

// bindJSONAllowEmpty: 요청 본문을 파싱합니다. 빈 본문은 영값으로 둡니다.
// 문법 오류는 400, 검증 규칙 위반은 422 입니다.
func bindJSONAllowEmpty(c *gin.Context, out any) bool {
	err := c.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	if apiErr := httperror.FromError(err); apiErr.Code == httperror.ErrorCodeValidation {
		writeError(c, apiErr)
		return false
	}
	writeError(c, httperror.NewInvalidInput("Request body must be a JSON object"))
	return false
}

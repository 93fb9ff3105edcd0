package querysubmit

import (
	"errors"
	"fmt"
)

// ErrRequestFailed 는 질의 한 사이클의 모든 실패가 매칭되는 단일 에러 종류다.
var ErrRequestFailed = errors.New("request failed")

// Stage: 실패가 발생한 단계입니다.
type Stage string

// 실패 단계
const (
	StageEncode    Stage = "encode"
	StageTransport Stage = "transport"
	StageStatus    Stage = "status"
	StageDecode    Stage = "decode"
)

// RequestFailedError: 전송 실패, 비정상 상태 코드, 응답 파싱 실패를 하나로 묶은 에러입니다.
type RequestFailedError struct {
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *RequestFailedError) Error() string {
	msg := fmt.Sprintf("request failed stage=%s", e.Stage)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s status=%d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Is: errors.Is(err, ErrRequestFailed) 매칭을 지원합니다.
func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

func failed(stage Stage, status int, err error) *RequestFailedError {
	return &RequestFailedError{Stage: stage, StatusCode: status, Err: err}
}

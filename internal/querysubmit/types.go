// Package querysubmit: 트리거가 발생할 때마다 입력값을 읽어 전처리 서비스로 POST하고,
// 응답의 tokens 를 표시 싱크로, 실패를 에러 싱크로 전달합니다.
package querysubmit

// Trigger: 활성화 핸들러를 등록할 수 있는 사용자 상호작용 원천입니다.
// 반환된 함수를 호출하면 등록이 해제됩니다.
type Trigger interface {
	OnActivate(handler func()) (unsubscribe func())
}

// InputSource: 트리거 시점의 질의 문자열을 제공합니다.
type InputSource interface {
	Value() string
}

// DisplaySink: 디코딩된 tokens 를 받습니다. present 가 false 면 응답에 tokens 가 없었던 것입니다.
type DisplaySink interface {
	DisplayTokens(tokens []string, present bool)
}

// ErrorSink: 사이클 실패를 받습니다.
type ErrorSink interface {
	ReportError(err error)
}

// InputFunc 는 함수를 InputSource 로 쓰게 해준다.
type InputFunc func() string

func (f InputFunc) Value() string { return f() }

// DisplayFunc 는 함수를 DisplaySink 로 쓰게 해준다.
type DisplayFunc func(tokens []string, present bool)

func (f DisplayFunc) DisplayTokens(tokens []string, present bool) { f(tokens, present) }

// ErrorFunc 는 함수를 ErrorSink 로 쓰게 해준다.
type ErrorFunc func(err error)

func (f ErrorFunc) ReportError(err error) { f(err) }

// PreprocessRequest: 전처리 서비스 요청 바디입니다.
type PreprocessRequest struct {
	Query string `json:"query"`
}

// Document: 검색 엔드포인트가 함께 돌려주는 문서 참조입니다.
type Document struct {
	Title    string  `mapstructure:"doc_title" json:"doc_title"`
	Location string  `mapstructure:"doc_location" json:"doc_location"`
	Score    float64 `mapstructure:"score" json:"score"`
}

// PreprocessResponse: 디코딩된 응답입니다. Raw 에는 파싱된 JSON 객체 전체가 남습니다.
type PreprocessResponse struct {
	Tokens        []string
	TokensPresent bool
	Documents     []Document
	Raw           map[string]any
}

// State: 한 사이클의 상태입니다.
type State string

// 사이클 상태
const (
	StateAwaitingResponse State = "awaiting-response"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// Result: Submit 한 번의 결과입니다.
type Result struct {
	Query    string
	Response *PreprocessResponse
	Err      error
}

// State: 결과로부터 사이클 상태를 계산합니다.
func (r Result) State() State {
	switch {
	case r.Err != nil:
		return StateFailed
	case r.Response != nil:
		return StateCompleted
	default:
		return StateAwaitingResponse
	}
}

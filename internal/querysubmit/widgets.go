package querysubmit

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Button: 프로세스 내부 Trigger 구현입니다. Click 은 등록된 핸들러를 모두 호출합니다.
type Button struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[uint64]func()
}

// NewButton 은 빈 Button 을 만든다.
func NewButton() *Button {
	return &Button{handlers: make(map[uint64]func())}
}

// OnActivate: 핸들러를 등록하고 해제 함수를 반환합니다.
func (b *Button) OnActivate(handler func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Click 은 버튼을 한 번 누른다.
func (b *Button) Click() {
	b.mu.Lock()
	handlers := make([]func(), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// TextInput: 프로세스 내부 InputSource 구현입니다.
type TextInput struct {
	mu    sync.RWMutex
	value string
}

// Set 은 현재 입력값을 바꾼다.
func (t *TextInput) Set(value string) {
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
}

func (t *TextInput) Value() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// WriterDisplay: tokens 를 한 줄씩 io.Writer 에 출력하는 DisplaySink 입니다.
type WriterDisplay struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterDisplay 는 w 로 출력하는 WriterDisplay 를 만든다.
func NewWriterDisplay(w io.Writer) *WriterDisplay {
	return &WriterDisplay{w: w}
}

func (d *WriterDisplay) DisplayTokens(tokens []string, present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !present {
		_, _ = fmt.Fprintln(d.w, "(no tokens)")
		return
	}
	_, _ = fmt.Fprintln(d.w, strings.Join(tokens, " "))
}

// LogErrorSink: 실패를 로그로만 남기는 ErrorSink 입니다.
type LogErrorSink struct {
	Logger *slog.Logger
}

func (s LogErrorSink) ReportError(err error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"err", err}
	if rf, ok := IsRequestFailed(err); ok {
		attrs = append(attrs, "stage", string(rf.Stage), "status", rf.StatusCode)
	}
	logger.Error("query_request_failed", attrs...)
}

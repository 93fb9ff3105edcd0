package querysubmit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Binding: 트리거와 Submitter 의 연결입니다. 트리거 한 번에 독립된 사이클 하나가 실행됩니다.
type Binding struct {
	submitter *Submitter
	input     InputSource
	display   DisplaySink
	errs      ErrorSink
	logger    *slog.Logger

	wg          conc.WaitGroup
	mu          sync.Mutex
	closed      bool
	unsubscribe func()
}

// Bind: trigger 가 발생할 때마다 input 값을 읽어 요청하고 결과를 display 또는 errs 로 전달합니다.
// 중복 제거, 큐잉, 취소, 디바운스는 하지 않습니다.
func (s *Submitter) Bind(trigger Trigger, input InputSource, display DisplaySink, errs ErrorSink) *Binding {
	b := &Binding{
		submitter: s,
		input:     input,
		display:   display,
		errs:      errs,
		logger:    s.logger,
	}
	b.unsubscribe = trigger.OnActivate(b.fire)
	return b
}

// fire 는 트리거 시점에 입력을 동기적으로 읽고 사이클을 띄운다.
func (b *Binding) fire() {
	query := b.input.Value()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.wg.Go(func() { b.cycle(query) })
}

func (b *Binding) cycle(query string) {
	ctx := context.Background()
	result := b.submitter.Submit(ctx, query)
	if result.Err != nil {
		b.report(result.Err)
		return
	}

	var pc panics.Catcher
	pc.Try(func() {
		b.display.DisplayTokens(result.Response.Tokens, result.Response.TokensPresent)
	})
	if r := pc.Recovered(); r != nil {
		b.report(fmt.Errorf("display sink panicked: %w", r.AsError()))
	}
}

func (b *Binding) report(err error) {
	var pc panics.Catcher
	pc.Try(func() { b.errs.ReportError(err) })
	if r := pc.Recovered(); r != nil {
		b.logger.Error("error_sink_panicked", "err", err, "panic", r.String())
	}
}

// Wait: 진행 중인 사이클이 모두 끝날 때까지 기다립니다.
func (b *Binding) Wait() {
	b.wg.Wait()
}

// Close: 트리거 등록을 해제하고 진행 중인 사이클을 기다립니다. 여러 번 호출해도 안전합니다.
func (b *Binding) Close() {
	b.mu.Lock()
	alreadyClosed := b.closed
	b.closed = true
	b.mu.Unlock()

	if !alreadyClosed && b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.wg.Wait()
}

// Package requestctx 는 요청 ID 를 context 로 주고받는 키를 둔다.
// 서버 미들웨어와 로거, 전처리 클라이언트가 같은 키를 쓴다.
package requestctx

import "context"

// Header 는 요청 ID 를 싣는 HTTP 헤더다.
const Header = "X-Request-ID"

type idKey struct{}

// WithID 는 id 를 담은 context 를 반환한다.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// ID 는 context 의 요청 ID 다. 없으면 빈 문자열이다.
func ID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(idKey{}).(string)
	return id
}

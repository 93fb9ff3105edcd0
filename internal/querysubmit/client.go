package querysubmit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/park285/tig-search-go/internal/httpclient"
	"github.com/park285/tig-search-go/internal/requestctx"
)

const (
	// DefaultEndpoint 는 로컬 전처리 서비스 주소다.
	DefaultEndpoint = "http://127.0.0.1:5000/preprocess"

	contentTypeJSON  = "application/json"
	headerAPIKey     = "X-API-Key"
	maxResponseBytes = 8 << 20
	maxErrorSnippet  = 256
)

// Config: Submitter 설정입니다. Timeout 이 0이면 요청 타임아웃을 두지 않습니다.
type Config struct {
	Endpoint       string
	APIKey         string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	HTTP2Enabled   bool
	Tracing        bool
}

// Option 은 Submitter 생성 옵션이다.
type Option func(*Submitter)

// WithHTTPClient: 기본 클라이언트 대신 주어진 *http.Client 를 사용합니다.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Submitter) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithLogger: 진단 로그를 남길 로거를 지정합니다.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Submitter: 질의를 전처리 서비스로 보내고 응답을 디코딩합니다. 동시 사용에 안전합니다.
type Submitter struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New: 설정으로 Submitter 를 생성합니다.
func New(cfg Config, opts ...Option) (*Submitter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme: %q", endpoint)
	}

	s := &Submitter{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		httpClient: httpclient.New(httpclient.Config{
			Timeout:        cfg.Timeout,
			ConnectTimeout: cfg.ConnectTimeout,
			HTTP2Enabled:   cfg.HTTP2Enabled,
			Tracing:        cfg.Tracing,
		}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Endpoint 는 요청 대상 URL 을 반환한다.
func (s *Submitter) Endpoint() string { return s.endpoint }

// Submit: 질의 하나를 POST 하고 결과를 반환합니다. 재시도하지 않습니다.
func (s *Submitter) Submit(ctx context.Context, query string) Result {
	resp, err := s.submit(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "query_submit_failed",
			"endpoint", s.endpoint,
			"stage", string(err.Stage),
			"status", err.StatusCode,
			"err", err.Err,
		)
		return Result{Query: query, Err: err}
	}
	s.logger.DebugContext(ctx, "query_submit_completed",
		"endpoint", s.endpoint,
		"tokens", len(resp.Tokens),
		"tokens_present", resp.TokensPresent,
	)
	return Result{Query: query, Response: resp}
}

func (s *Submitter) submit(ctx context.Context, query string) (*PreprocessResponse, *RequestFailedError) {
	body, err := encodeRequest(PreprocessRequest{Query: query})
	if err != nil {
		return nil, failed(StageEncode, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, failed(StageEncode, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	if s.apiKey != "" {
		req.Header.Set(headerAPIKey, s.apiKey)
	}
	if reqID := requestctx.ID(ctx); reqID != "" {
		req.Header.Set(requestctx.Header, reqID)
	}

	httpResp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, failed(StageTransport, 0, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, failed(StageTransport, httpResp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if len(payload) > maxResponseBytes {
		return nil, failed(StageDecode, httpResp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseBytes))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, failed(StageStatus, httpResp.StatusCode, fmt.Errorf("unexpected status: %s", snippet(payload)))
	}

	decoded, err := decodeResponse(payload)
	if err != nil {
		return nil, failed(StageDecode, httpResp.StatusCode, err)
	}
	return decoded, nil
}

func encodeRequest(req PreprocessRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeResponse: JSON 파싱 이후에는 필드를 관대하게 읽습니다.
// 객체가 아니거나 tokens 가 없거나 null 이면 absent 로 취급합니다.
func decodeResponse(payload []byte) (*PreprocessResponse, error) {
	var parsed any
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	out := &PreprocessResponse{}
	raw, ok := parsed.(map[string]any)
	if !ok {
		return out, nil
	}
	out.Raw = raw

	if value, exists := raw["tokens"]; exists && value != nil {
		var tokens []string
		if err := mapstructure.WeakDecode(value, &tokens); err != nil {
			return nil, fmt.Errorf("decode tokens: %w", err)
		}
		if tokens == nil {
			tokens = []string{}
		}
		out.Tokens = tokens
		out.TokensPresent = true
	}

	if value, exists := raw["documents"]; exists && value != nil {
		var docs []Document
		if err := mapstructure.WeakDecode(value, &docs); err == nil {
			out.Documents = docs
		}
	}
	return out, nil
}

func snippet(payload []byte) string {
	text := strings.TrimSpace(string(payload))
	if len(text) > maxErrorSnippet {
		text = text[:maxErrorSnippet] + "..."
	}
	if text == "" {
		return "<empty body>"
	}
	return text
}

// IsRequestFailed 는 err 가 RequestFailedError 인지 확인하고 꺼내준다.
func IsRequestFailed(err error) (*RequestFailedError, bool) {
	var target *RequestFailedError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

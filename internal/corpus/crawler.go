// Package corpus 는 신문 PDF 수집, 텍스트 변환, 색인 문서 구축을 담당한다.
package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/httpclient"
)

const (
	linkSelector   = "a.post-title.post-url"
	pdfPrefix      = "haddas_eritra_"
	issueIDLayout  = "02012006"
	pathDateLayout = "2006/01/02"
	defaultRetries = 3

	defaultDownloadTimeout = 2 * time.Minute
	defaultConnectTimeout  = 10 * time.Second
)

// ErrNotFound 는 원격 PDF 가 없을 때 반환된다. 재시도하지 않는다.
var ErrNotFound = errors.New("corpus: remote file not found")

// CrawlReport 는 다운로드 결과 집계다.
type CrawlReport struct {
	Downloaded int64
	Skipped    int64
	Failed     int64
}

// Crawler: 목록 페이지에서 신문 링크를 모으고 PDF 를 내려받습니다.
type Crawler struct {
	cfg          config.CorpusConfig
	client       *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	maxRetries   uint64
	retryInitial time.Duration
}

// CrawlerOption 은 Crawler 옵션이다.
type CrawlerOption func(*Crawler)

// WithRetry 는 다운로드 재시도 횟수와 첫 대기 시간을 바꾼다.
func WithRetry(maxRetries uint64, initial time.Duration) CrawlerOption {
	return func(c *Crawler) {
		c.maxRetries = maxRetries
		c.retryInitial = initial
	}
}

// NewCrawler 는 Crawler 를 생성한다. RequestsPerSec 이 0 이하이면 요청 간격을 두지 않는다.
// client 가 nil 이면 cfg.UserAgent 를 붙이는 기본 클라이언트를 쓴다.
func NewCrawler(cfg config.CorpusConfig, client *http.Client, logger *slog.Logger, opts ...CrawlerOption) *Crawler {
	if client == nil {
		client = httpclient.New(httpclient.Config{
			Timeout:        defaultDownloadTimeout,
			ConnectTimeout: defaultConnectTimeout,
			UserAgent:      cfg.UserAgent,
		})
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	c := &Crawler{
		cfg:          cfg,
		client:       client,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger,
		maxRetries:   defaultRetries,
		retryInitial: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractLinks 는 목록 페이지 HTML 에서 year 가 포함된 기사 링크를 뽑는다.
func ExtractLinks(r io.Reader, year string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	var links []string
	doc.Find(linkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if ok && href != "" && strings.Contains(href, year) {
			links = append(links, href)
		}
	})
	return links, nil
}

// IssueID: 기사 링크 경로의 /YYYY/MM/DD/ 부분에서 DDMMYYYY 발행일 ID 를 만듭니다.
func IssueID(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	for i := 0; i+2 < len(segments); i++ {
		day, err := time.Parse(pathDateLayout, strings.Join(segments[i:i+3], "/"))
		if err == nil {
			return day.Format(issueIDLayout), true
		}
	}
	return "", false
}

// PDFName 은 발행일 ID 의 PDF 파일 이름이다.
func PDFName(id string) string {
	return pdfPrefix + id + ".pdf"
}

// CollectLinks 는 설정된 페이지 범위를 돌며 기사 링크를 모은다. 한 페이지 실패는 건너뛴다.
func (c *Crawler) CollectLinks(ctx context.Context) ([]string, error) {
	base := strings.TrimRight(c.cfg.ListingBaseURL, "/")
	seen := make(map[string]struct{})
	var links []string
	for page := c.cfg.StartPage; page <= c.cfg.EndPage; page++ {
		pageURL := fmt.Sprintf("%s/page/%d/", base, page)
		found, err := c.fetchListing(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			c.logger.Warn("corpus_listing_failed", "url", pageURL, "err", err)
			continue
		}
		for _, link := range found {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
		c.logger.Info("corpus_listing_fetched", "page", page, "links", len(found))
	}
	return links, nil
}

func (c *Crawler) fetchListing(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return ExtractLinks(resp.Body, c.cfg.TargetYear)
}

// LoadOrCollectLinks: path 에 링크 목록이 있으면 읽고, 없으면 수집해 저장합니다.
func (c *Crawler) LoadOrCollectLinks(ctx context.Context, path string) ([]string, error) {
	if links, err := readLines(path); err == nil && len(links) > 0 {
		c.logger.Info("corpus_links_loaded", "path", path, "links", len(links))
		return links, nil
	}

	links, err := c.CollectLinks(ctx)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := os.WriteFile(path, []byte(strings.Join(links, "\n")+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("write links file: %w", err)
		}
	}
	return links, nil
}

// Download 는 발행일마다 PDF 를 한 번 내려받는다. 같은 날 기사 링크가 여럿이면 첫 링크만 쓴다.
// 이미 있는 파일은 건너뛰고, 개별 실패는 집계만 한다.
func (c *Crawler) Download(ctx context.Context, links []string) (CrawlReport, error) {
	if err := os.MkdirAll(c.cfg.PDFDir, 0o755); err != nil {
		return CrawlReport{}, fmt.Errorf("create pdf dir: %w", err)
	}

	var downloaded, skipped, failed atomic.Int64
	p := pool.New().WithMaxGoroutines(max(1, c.cfg.MaxDownloads))
	scheduled := make(map[string]struct{}, len(links))
	for _, link := range links {
		id, ok := IssueID(link)
		if !ok {
			c.logger.Warn("corpus_link_without_date", "link", link)
			failed.Add(1)
			continue
		}
		if _, dup := scheduled[id]; dup {
			c.logger.Debug("corpus_issue_already_scheduled", "id", id, "link", link)
			continue
		}
		scheduled[id] = struct{}{}
		p.Go(func() {
			target := filepath.Join(c.cfg.PDFDir, PDFName(id))
			if info, err := os.Stat(target); err == nil && info.Size() > 0 {
				skipped.Add(1)
				return
			}
			if err := c.downloadPDF(ctx, id, target); err != nil {
				c.logger.Warn("corpus_download_failed", "id", id, "err", err)
				failed.Add(1)
				return
			}
			c.logger.Info("corpus_downloaded", "file", filepath.Base(target))
			downloaded.Add(1)
		})
	}
	p.Wait()

	report := CrawlReport{Downloaded: downloaded.Load(), Skipped: skipped.Load(), Failed: failed.Load()}
	return report, ctx.Err()
}

func (c *Crawler) downloadPDF(ctx context.Context, id, target string) error {
	pdfURL := strings.TrimRight(c.cfg.PDFBaseURL, "/") + "/" + PDFName(id)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial
	policy.MaxElapsedTime = 0

	operation := func() error {
		resp, err := c.get(ctx, pdfURL)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		return writeFileAtomic(target, resp.Body)
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("corpus_download_retry", "id", id, "err", err, "retry_in", wait)
	}
	return backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx), notify)
}

func (c *Crawler) get(ctx context.Context, target string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, target)
	}
	return resp, nil
}

func writeFileAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

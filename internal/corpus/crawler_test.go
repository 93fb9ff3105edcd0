package corpus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/park285/tig-search-go/internal/config"
)

const listingHTML = `<html><body>
<a class="post-title post-url" href="https://shabait.com/2023/05/01/haddas-ertra-01-may-2023/">1 May</a>
<a class="post-title post-url" href="https://shabait.com/2023/05/03/haddas-ertra-03-may-2023/">3 May</a>
<a class="post-title post-url" href="https://shabait.com/2022/12/30/haddas-ertra-30-dec-2022/">old</a>
<a class="post-url" href="https://shabait.com/2023/05/02/not-a-title/">skip</a>
</body></html>`

func TestExtractLinks(t *testing.T) {
	links, err := ExtractLinks(strings.NewReader(listingHTML), "2023")
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://shabait.com/2023/05/01/haddas-ertra-01-may-2023/",
		"https://shabait.com/2023/05/03/haddas-ertra-03-may-2023/",
	}, links)
}

func TestIssueID(t *testing.T) {
	id, ok := IssueID("https://shabait.com/2023/12/29/haddas-ertra-29-december-2023/")
	require.True(t, ok)
	require.Equal(t, "29122023", id)

	_, ok = IssueID("https://shabait.com/category/newspapers/")
	require.False(t, ok)

	require.Equal(t, "haddas_eritra_29122023.pdf", PDFName(id))
}

func newTestSite(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/listing/page/1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, listingHTML)
	})
	mux.HandleFunc("/listing/page/2/", func(w http.ResponseWriter, _ *http.Request) {
		// 1페이지와 겹치는 링크는 한 번만 남아야 한다.
		fmt.Fprint(w, `<a class="post-title post-url" href="https://shabait.com/2023/05/01/haddas-ertra-01-may-2023/">dup</a>`)
	})
	mux.HandleFunc("/listing/page/3/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/pdf/haddas_eritra_01052023.pdf", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "%PDF-01052023")
	})
	mux.HandleFunc("/pdf/haddas_eritra_03052023.pdf", func(w http.ResponseWriter, _ *http.Request) {
		if flaky.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "%PDF-03052023")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &flaky
}

func testCorpusConfig(srv *httptest.Server, dir string) config.CorpusConfig {
	return config.CorpusConfig{
		ListingBaseURL: srv.URL + "/listing",
		PDFBaseURL:     srv.URL + "/pdf",
		StartPage:      1,
		EndPage:        3,
		TargetYear:     "2023",
		PDFDir:         filepath.Join(dir, "pdf"),
		UserAgent:      "test",
		MaxDownloads:   2,
	}
}

func TestCollectLinksSkipsFailedPages(t *testing.T) {
	srv, _ := newTestSite(t)
	c := NewCrawler(testCorpusConfig(srv, t.TempDir()), srv.Client(), nil)

	links, err := c.CollectLinks(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 2)
}

func TestLoadOrCollectLinksCachesFile(t *testing.T) {
	srv, _ := newTestSite(t)
	dir := t.TempDir()
	c := NewCrawler(testCorpusConfig(srv, dir), srv.Client(), nil)
	path := filepath.Join(dir, "links.txt")

	links, err := c.LoadOrCollectLinks(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, links, 2)

	require.NoError(t, os.WriteFile(path, []byte("https://shabait.com/2023/06/01/x/\n"), 0o644))
	links, err = c.LoadOrCollectLinks(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"https://shabait.com/2023/06/01/x/"}, links)
}

func TestDownload(t *testing.T) {
	srv, flaky := newTestSite(t)
	dir := t.TempDir()
	cfg := testCorpusConfig(srv, dir)
	c := NewCrawler(cfg, srv.Client(), nil, WithRetry(2, time.Millisecond))

	links := []string{
		"https://shabait.com/2023/05/01/haddas-ertra-01-may-2023/",
		"https://shabait.com/2023/05/03/haddas-ertra-03-may-2023/",
		"https://shabait.com/2023/05/05/missing/",
		"https://shabait.com/about/",
	}
	report, err := c.Download(context.Background(), links)
	require.NoError(t, err)
	require.Equal(t, CrawlReport{Downloaded: 2, Failed: 2}, report)
	require.Equal(t, int32(2), flaky.Load())

	data, err := os.ReadFile(filepath.Join(cfg.PDFDir, "haddas_eritra_03052023.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF-03052023", string(data))

	report, err = c.Download(context.Background(), links[:2])
	require.NoError(t, err)
	require.Equal(t, CrawlReport{Skipped: 2}, report)
}

func TestDownloadFetchesEachIssueOnce(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/pdf/haddas_eritra_01052023.pdf", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "%PDF-01052023")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testCorpusConfig(srv, t.TempDir())
	cfg.MaxDownloads = 4
	c := NewCrawler(cfg, srv.Client(), nil)

	links := []string{
		"https://shabait.com/2023/05/01/haddas-ertra-01-may-2023/",
		"https://shabait.com/2023/05/01/haddas-ertra-01-may-2023-supplement/",
		"https://shabait.com/2023/05/01/another-article/",
	}
	report, err := c.Download(context.Background(), links)
	require.NoError(t, err)
	require.Equal(t, CrawlReport{Downloaded: 1}, report)
	require.Equal(t, int32(1), hits.Load())
}

package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/park285/tig-search-go/internal/search"
)

// Processor 는 문서 본문을 색인 토큰으로 바꾼다.
type Processor interface {
	Process(text string) []string
}

// Builder: 텍스트 파일을 병렬로 전처리해 색인 문서를 만듭니다.
type Builder struct {
	processor Processor
	pdfDir    string
	workers   int
	logger    *slog.Logger
}

// NewBuilder 는 Builder 를 생성한다. pdfDir 은 문서 위치(document_location) 기준 경로다.
func NewBuilder(processor Processor, pdfDir string, workers int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{processor: processor, pdfDir: pdfDir, workers: max(1, workers), logger: logger}
}

// DocumentID 는 파일 이름의 마지막 '_' 뒤 부분이다. (haddas_eritra_01052023.txt → 01052023)
func DocumentID(fileName string) string {
	stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if idx := strings.LastIndex(stem, "_"); idx >= 0 {
		return stem[idx+1:]
	}
	return stem
}

// BuildDir 는 textDir 의 모든 .txt 를 전처리한다. 결과는 문서 ID 순이다.
func (b *Builder) BuildDir(ctx context.Context, textDir string) ([]search.Document, error) {
	entries, err := os.ReadDir(textDir)
	if err != nil {
		return nil, fmt.Errorf("read text dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".txt" {
			names = append(names, entry.Name())
		}
	}

	docs := make([]search.Document, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(filepath.Join(textDir, name))
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			text := strings.ReplaceAll(string(raw), "\n", " ")
			docs[i] = search.Document{
				ID:       DocumentID(name),
				Location: filepath.Join(b.pdfDir, strings.TrimSuffix(name, ".txt")+".pdf"),
				Tokens:   b.processor.Process(text),
			}
			b.logger.Debug("corpus_document_processed", "file", name, "tokens", len(docs[i].Tokens))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(x, y search.Document) int { return strings.Compare(x.ID, y.ID) })
	return docs, nil
}

// WriteJSON 은 문서마다 <파일이름>.json 을 jsonDir 에 쓴다.
func WriteJSON(jsonDir string, docs []search.Document) error {
	if err := os.MkdirAll(jsonDir, 0o755); err != nil {
		return fmt.Errorf("create json dir: %w", err)
	}
	for _, doc := range docs {
		data, err := json.MarshalIndent(doc, "", "    ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", doc.ID, err)
		}
		name := strings.TrimSuffix(filepath.Base(doc.Location), filepath.Ext(doc.Location)) + ".json"
		if err := os.WriteFile(filepath.Join(jsonDir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// ReadJSONDir 는 WriteJSON 으로 쓴 문서들을 다시 읽는다. 결과는 문서 ID 순이다.
func ReadJSONDir(jsonDir string) ([]search.Document, error) {
	entries, err := os.ReadDir(jsonDir)
	if err != nil {
		return nil, fmt.Errorf("read json dir: %w", err)
	}
	var docs []search.Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(jsonDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var doc search.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Name(), err)
		}
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(x, y search.Document) int { return strings.Compare(x.ID, y.ID) })
	return docs, nil
}

// ExportInvertedIndex 는 용어 → 문서 ID 목록 색인을 JSON 파일로 쓴다.
func ExportInvertedIndex(path string, ix *search.Index) error {
	data, err := json.MarshalIndent(ix.InvertedIndex(), "", "    ")
	if err != nil {
		return fmt.Errorf("marshal inverted index: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write inverted index: %w", err)
	}
	return nil
}

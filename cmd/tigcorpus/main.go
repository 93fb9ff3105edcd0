// tigcorpus 는 말뭉치 수집(crawl), PDF 텍스트 변환(convert), 색인 구축(build)을 실행한다.
//
//	tigcorpus crawl -links newspaper_links_2023.txt
//	tigcorpus convert
//	tigcorpus build -export inverted_index.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/corpus"
	"github.com/park285/tig-search-go/internal/logging"
	"github.com/park285/tig-search-go/internal/search"
	"github.com/park285/tig-search-go/internal/store"
	"github.com/park285/tig-search-go/internal/tigmorph"
)

var errUsage = errors.New("usage: tigcorpus <crawl|convert|build> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.ProvideConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewCLILogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Error("tigcorpus_failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "crawl":
		return runCrawl(ctx, cfg, logger, args[1:])
	case "convert":
		return runConvert(ctx, cfg, logger, args[1:])
	case "build":
		return runBuild(ctx, cfg, logger, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ContinueOnError)
	links := fs.String("links", fmt.Sprintf("newspaper_links_%s.txt", cfg.Corpus.TargetYear), "link list cache file")
	pdfDir := fs.String("out", cfg.Corpus.PDFDir, "pdf output directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	corpusCfg := cfg.Corpus
	corpusCfg.PDFDir = *pdfDir

	crawler := corpus.NewCrawler(corpusCfg, nil, logger)

	found, err := crawler.LoadOrCollectLinks(ctx, *links)
	if err != nil {
		return fmt.Errorf("collect links: %w", err)
	}
	report, err := crawler.Download(ctx, found)
	logger.Info("corpus_crawl_done",
		"links", len(found),
		"downloaded", report.Downloaded,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return err
}

func runConvert(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	bin := fs.String("bin", corpus.DefaultPDFToText, "pdftotext binary")
	pdfDir := fs.String("in", cfg.Corpus.PDFDir, "pdf input directory")
	textDir := fs.String("out", cfg.Corpus.TextDir, "text output directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	report, err := corpus.NewConverter(*bin, logger).ConvertDir(ctx, *pdfDir, *textDir)
	logger.Info("corpus_convert_done", "converted", report.Converted, "failed", report.Failed)
	return err
}

func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	textDir := fs.String("in", cfg.Corpus.TextDir, "text input directory")
	jsonDir := fs.String("json", cfg.Corpus.JSONDir, "per-document json output directory (empty to skip)")
	export := fs.String("export", "", "inverted index json output path (empty to skip)")
	persist := fs.Bool("store", true, "save documents into the index store")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	lex, err := tigmorph.LoadLexicon(cfg.Lexicon.Path)
	if err != nil {
		return fmt.Errorf("load lexicon: %w", err)
	}
	builder := corpus.NewBuilder(tigmorph.NewPreprocessor(lex), cfg.Corpus.PDFDir, cfg.Corpus.MaxBuildWorkers, logger)

	started := time.Now()
	docs, err := builder.BuildDir(ctx, *textDir)
	if err != nil {
		return fmt.Errorf("build documents: %w", err)
	}
	if *jsonDir != "" {
		if err := corpus.WriteJSON(*jsonDir, docs); err != nil {
			return err
		}
	}
	if *export != "" {
		if err := corpus.ExportInvertedIndex(*export, search.Build(docs)); err != nil {
			return err
		}
	}
	if *persist {
		if err := saveDocuments(ctx, cfg, logger, docs); err != nil {
			return err
		}
	}

	logger.Info("corpus_build_done",
		"documents", len(docs),
		"json_dir", *jsonDir,
		"export", *export,
		"stored", *persist,
		"elapsed", time.Since(started),
	)
	return nil
}

func saveDocuments(ctx context.Context, cfg *config.Config, logger *slog.Logger, docs []search.Document) error {
	st, err := store.Open(ctx, cfg.Index, logger)
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.SaveDocuments(ctx, docs); err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	total, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	logger.Info("corpus_store_saved", "driver", st.Driver(), "saved", len(docs), "total", total)
	return nil
}

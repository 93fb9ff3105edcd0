package corpus

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPDFToText 는 PDF 텍스트 추출에 쓰는 poppler 도구 이름이다.
const DefaultPDFToText = "pdftotext"

// ConvertReport 는 변환 결과 집계다.
type ConvertReport struct {
	Converted int
	Failed    int
}

// Converter: 외부 pdftotext 도구로 PDF 를 UTF-8 텍스트로 바꿉니다.
type Converter struct {
	bin    string
	logger *slog.Logger
}

// NewConverter 는 Converter 를 생성한다. bin 이 비어 있으면 pdftotext 를 쓴다.
func NewConverter(bin string, logger *slog.Logger) *Converter {
	if bin == "" {
		bin = DefaultPDFToText
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{bin: bin, logger: logger}
}

// ConvertDir 는 pdfDir 의 모든 .pdf 를 textDir 의 같은 이름 .txt 로 변환한다.
// 파일 하나의 실패는 기록하고 계속 진행한다.
func (c *Converter) ConvertDir(ctx context.Context, pdfDir, textDir string) (ConvertReport, error) {
	entries, err := os.ReadDir(pdfDir)
	if err != nil {
		return ConvertReport{}, fmt.Errorf("read pdf dir: %w", err)
	}
	if err := os.MkdirAll(textDir, 0o755); err != nil {
		return ConvertReport{}, fmt.Errorf("create text dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	var report ConvertReport
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		txtName := strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
		if err := c.Convert(ctx, filepath.Join(pdfDir, name), filepath.Join(textDir, txtName)); err != nil {
			c.logger.Error("corpus_convert_failed", "file", name, "err", err)
			report.Failed++
			continue
		}
		c.logger.Info("corpus_converted", "file", name, "output", txtName)
		report.Converted++
	}
	return report, nil
}

// Convert 는 PDF 한 개를 텍스트 파일로 변환한다.
func (c *Converter) Convert(ctx context.Context, pdfPath, txtPath string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin, "-enc", "UTF-8", pdfPath, txtPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", c.bin, filepath.Base(pdfPath), err, msg)
		}
		return fmt.Errorf("%s %s: %w", c.bin, filepath.Base(pdfPath), err)
	}
	return nil
}

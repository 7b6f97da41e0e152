package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/cloudutil/pkg/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotFound is returned when the keyword file does not exist.
var ErrNotFound = errors.New("keyword file not found")

// rowReader yields one record per call and io.EOF when exhausted.
type rowReader interface {
	Read() ([]string, error)
}

// CSVIngester reads keyword files located through a path template.
type CSVIngester struct {
	pathTemplate string
}

func NewCSVIngester(pathTemplate string) *CSVIngester {
	return &CSVIngester{pathTemplate: pathTemplate}
}

// Path resolves fileName against the template. "{}" and "%s" are placeholders;
// a template without one is treated as a directory.
func (i *CSVIngester) Path(fileName string) string {
	switch {
	case strings.Contains(i.pathTemplate, "{}"):
		return strings.Replace(i.pathTemplate, "{}", fileName, 1)
	case strings.Contains(i.pathTemplate, "%s"):
		return strings.Replace(i.pathTemplate, "%s", fileName, 1)
	case i.pathTemplate == "":
		return fileName
	default:
		return filepath.Join(i.pathTemplate, fileName)
	}
}

// Keywords returns the lower-cased first-column values of every data row, in file order.
func (i *CSVIngester) Keywords(ctx context.Context, fileName string) ([]string, error) {
	path := i.Path(fileName)
	log := logger.Log.With().Str("file", path).Logger()

	keywords, err := readKeywords(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("csv file not found")
		} else {
			log.Error().Err(err).Msg("csv file could not be read")
		}
		return nil, err
	}

	log.Info().Int("count", len(keywords)).Msg("keywords loaded from csv")
	return keywords, nil
}

func readKeywords(ctx context.Context, path string) ([]string, error) {
	var (
		reader rowReader
		closer io.Closer
	)

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := openXLSXRows(path)
		if err != nil {
			return nil, err
		}
		reader, closer = rows, rows
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, openError(path, err)
		}
		r := csv.NewReader(f)
		// rows may be shorter or longer than the header
		r.FieldsPerRecord = -1
		// inch marks like `6" pipe` are literal text
		r.LazyQuotes = true
		reader, closer = r, f
	}
	defer closer.Close()

	return extractFirstColumn(ctx, reader)
}

func extractFirstColumn(ctx context.Context, reader rowReader) ([]string, error) {
	keywords := make([]string, 0)
	// full Unicode mapping, e.g. "İ" lowers to "i̇"
	lower := cases.Lower(language.Und)

	// Read header
	header, err := reader.Read()
	if err == io.EOF {
		return keywords, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("CSV header has no columns")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		// blank spreadsheet rows come back with no cells
		if len(record) == 0 {
			continue
		}

		keywords = append(keywords, lower.String(record[0]))
	}

	return keywords, nil
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	return fmt.Errorf("failed to open %s: %w", path, err)
}

package tlc

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

var gzipMagic = []byte{0x1f, 0x8b}

// csvStream reads a delimited body batch by batch.
type csvStream struct {
	body   io.Closer
	gz     *gzip.Reader
	reader *csv.Reader
	header []string
}

// OpenCSV starts streaming the CSV at url. Gzip bodies are detected by their
// magic bytes and decompressed on the fly; the header is read eagerly.
func (c *Client) OpenCSV(ctx context.Context, url string) (models.RowStream, error) {
	ctx = wrap.WithAction(ctx, types.ActionFetch)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	stream, err := newCSVStream(body)
	if err != nil {
		body.Close()
		return nil, wrap.Error(ctx, fmt.Errorf("open %s: %w", url, err))
	}
	return stream, nil
}

func newCSVStream(body io.ReadCloser) (*csvStream, error) {
	s := &csvStream{body: body}

	buffered := bufio.NewReaderSize(body, 64<<10)
	var src io.Reader = buffered

	magic, err := buffered.Peek(2)
	if err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", types.ErrMalformedFile, err)
		}
		s.gz = gz
		src = gz
	}

	s.reader = csv.NewReader(src)
	s.reader.ReuseRecord = false
	s.reader.FieldsPerRecord = -1

	header, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", types.ErrMalformedFile)
		}
		return nil, fmt.Errorf("%w: header: %v", types.ErrMalformedFile, err)
	}
	// strip a UTF-8 BOM from the first column name
	if len(header) > 0 && len(header[0]) >= 3 && header[0][:3] == "\xef\xbb\xbf" {
		header[0] = header[0][3:]
	}
	s.header = header

	return s, nil
}

func (s *csvStream) Header() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

func (s *csvStream) Next(n int) ([][]string, error) {
	if n <= 0 {
		n = 1
	}

	rows := make([][]string, 0, n)
	for len(rows) < n {
		rec, err := s.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rows, io.EOF
			}
			return rows, fmt.Errorf("%w: %v", types.ErrMalformedFile, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func (s *csvStream) Close() error {
	if s.gz != nil {
		s.gz.Close()
	}
	return s.body.Close()
}

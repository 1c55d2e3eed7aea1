package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// FileTicketSource reads tickets from a spreadsheet on disk. The file is read
// again on every load so edits show up on reload.
type FileTicketSource struct {
	dataset string
	path    string
	schema  domain.TicketSchema
}

var _ ports.TicketSource = (*FileTicketSource)(nil)

// NewFileTicketSource creates a ticket source for the spreadsheet at path.
func NewFileTicketSource(dataset, path string, schema domain.TicketSchema) *FileTicketSource {
	return &FileTicketSource{dataset: dataset, path: path, schema: schema}
}

func (s *FileTicketSource) Dataset() string { return s.dataset }

// LoadTickets reads the spreadsheet.
func (s *FileTicketSource) LoadTickets(ctx context.Context) ([]domain.TicketRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadTickets(f, s.path, s.schema)
}

// Ping checks the spreadsheet is readable.
func (s *FileTicketSource) Ping(ctx context.Context) error {
	return ping(ctx, s.path)
}

// UploadTicketSource serves tickets from an uploaded file held in memory.
// It belongs to a single request and is never shared.
type UploadTicketSource struct {
	filename string
	data     []byte
	schema   domain.TicketSchema
}

var _ ports.TicketSource = (*UploadTicketSource)(nil)

// NewUploadTicketSource wraps the bytes of an uploaded spreadsheet.
func NewUploadTicketSource(filename string, data []byte, schema domain.TicketSchema) *UploadTicketSource {
	return &UploadTicketSource{filename: filename, data: data, schema: schema}
}

func (s *UploadTicketSource) Dataset() string { return "upload:" + s.filename }

func (s *UploadTicketSource) LoadTickets(ctx context.Context) ([]domain.TicketRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadTickets(bytes.NewReader(s.data), s.filename, s.schema)
}

// FileIndicatorSource reads the indicator workbook from disk.
type FileIndicatorSource struct {
	path   string
	schema domain.IndicatorSchema
}

var _ ports.IndicatorSource = (*FileIndicatorSource)(nil)

// NewFileIndicatorSource creates an indicator source for the workbook at path.
func NewFileIndicatorSource(path string, schema domain.IndicatorSchema) *FileIndicatorSource {
	return &FileIndicatorSource{path: path, schema: schema}
}

func (s *FileIndicatorSource) LoadIndicators(ctx context.Context) ([]domain.IndicatorTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadIndicators(f, s.path, s.schema)
}

// Ping checks the workbook is readable.
func (s *FileIndicatorSource) Ping(ctx context.Context) error {
	return ping(ctx, s.path)
}

func ping(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/csvimport"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/metrics"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gocarina/gocsv"
	"github.com/h2non/filetype"
)

// maxReportedImportErrors caps the per-row errors returned to the caller.
const maxReportedImportErrors = 100

// ImportableEntities lists the tables CSV import accepts.
var ImportableEntities = []types.TableName{
	types.TableNameClients,
	types.TableNameProviders,
	types.TableNameDevices,
}

type ImportService interface {
	// Import reads a CSV file with a header row, drops duplicate rows and
	// creates the remaining ones one by one. A row that fails validation or
	// insertion is counted and reported without stopping the import.
	Import(ctx context.Context, entity types.TableName, r io.Reader) (*dto.ImportResult, error)
}

type importService struct {
	ServiceParams
	clients   ClientService
	providers ProviderService
	devices   DeviceService
}

func NewImportService(params ServiceParams) ImportService {
	return &importService{
		ServiceParams: params,
		clients:       NewClientService(params),
		providers:     NewProviderService(params),
		devices:       NewDeviceService(params),
	}
}

// importSpec describes how one entity is keyed and inserted.
type importSpec struct {
	required []string
	keyFn    func(header []string) csvimport.KeyFunc
	insert   func(ctx context.Context, s *importService, header []string, rows [][]string, lines []int, res *dto.ImportResult)
}

var importSpecs = map[types.TableName]importSpec{
	types.TableNameClients: {
		required: []string{"name"},
		keyFn:    emailThenNameKey,
		insert: func(ctx context.Context, s *importService, header []string, rows [][]string, lines []int, res *dto.ImportResult) {
			typed, errs := typeRows[dto.ClientCSVRow](header, rows)
			for i, row := range typed {
				if errs[i] != nil {
					s.record(res, lines[i], errs[i])
					continue
				}
				_, err := s.clients.CreateClient(ctx, *row.ToCreateRequest())
				s.record(res, lines[i], err)
			}
		},
	},
	types.TableNameProviders: {
		required: []string{"name"},
		keyFn:    emailThenNameKey,
		insert: func(ctx context.Context, s *importService, header []string, rows [][]string, lines []int, res *dto.ImportResult) {
			typed, errs := typeRows[dto.ProviderCSVRow](header, rows)
			for i, row := range typed {
				if errs[i] != nil {
					s.record(res, lines[i], errs[i])
					continue
				}
				_, err := s.providers.CreateProvider(ctx, *row.ToCreateRequest())
				s.record(res, lines[i], err)
			}
		},
	},
	types.TableNameDevices: {
		required: []string{"name", "serial_number"},
		keyFn: func(header []string) csvimport.KeyFunc {
			return csvimport.LowerTrimKey(csvimport.ColumnIndex(header, "serial_number"))
		},
		insert: func(ctx context.Context, s *importService, header []string, rows [][]string, lines []int, res *dto.ImportResult) {
			typed, errs := typeRows[dto.DeviceCSVRow](header, rows)
			for i, row := range typed {
				if errs[i] != nil {
					s.record(res, lines[i], errs[i])
					continue
				}
				_, err := s.devices.CreateDevice(ctx, *row.ToCreateRequest())
				s.record(res, lines[i], err)
			}
		},
	},
}

// rowsDecoder feeds already tokenized rows to gocsv.
type rowsDecoder [][]string

func (d rowsDecoder) GetCSVRows() ([][]string, error) {
	return d, nil
}

// typeRows unmarshals each row on its own so the result stays aligned with
// rows and a bad cell fails only its row.
func typeRows[T any](header []string, rows [][]string) ([]*T, []error) {
	typed := make([]*T, len(rows))
	errs := make([]error, len(rows))
	for i, row := range rows {
		var out []*T
		if err := gocsv.UnmarshalDecoder(rowsDecoder{header, row}, &out); err != nil {
			errs[i] = rowTypeError(header, err)
			continue
		}
		if len(out) != 1 {
			errs[i] = ierr.NewError("row produced no record").
				WithHint("Row could not be read").
				Mark(ierr.ErrValidation)
			continue
		}
		typed[i] = out[0]
	}
	return typed, errs
}

func rowTypeError(header []string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) && pe.Column > 0 && pe.Column <= len(header) {
		return ierr.WithError(pe.Err).
			WithHintf("Invalid value in column %s", header[pe.Column-1]).
			Mark(ierr.ErrValidation)
	}
	return ierr.WithError(err).
		WithHint("Row could not be read").
		Mark(ierr.ErrValidation)
}

// sniffLen covers the magic numbers filetype knows about.
const sniffLen = 262

// rejectBinary refuses spreadsheets, archives and other binary uploads that
// would otherwise surface as confusing CSV parse errors.
func rejectBinary(br *bufio.Reader) error {
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return csvParseError(err)
	}
	kind, _ := filetype.Match(head)
	if kind == filetype.Unknown {
		return nil
	}
	return ierr.NewErrorf("uploaded file is %s, not csv", kind.MIME.Value).
		WithHintf("Upload a CSV file, not a .%s file", kind.Extension).
		WithReportableDetails(map[string]any{"mime": kind.MIME.Value}).
		Mark(ierr.ErrValidation)
}

func emailThenNameKey(header []string) csvimport.KeyFunc {
	return csvimport.FirstNonEmptyKey(
		csvimport.LowerTrimKey(csvimport.ColumnIndex(header, "email")),
		csvimport.LowerTrimKey(csvimport.ColumnIndex(header, "name")),
	)
}

func (s *importService) Import(ctx context.Context, entity types.TableName, r io.Reader) (*dto.ImportResult, error) {
	spec, ok := importSpecs[entity]
	if !ok {
		return nil, ierr.NewErrorf("import not supported for %s", entity).
			WithHint("Only clients, providers and devices can be imported").
			WithReportableDetails(map[string]any{"entity": entity, "allowed": ImportableEntities}).
			Mark(ierr.ErrValidation)
	}

	br := bufio.NewReaderSize(r, sniffLen)
	if err := rejectBinary(br); err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, csvParseError(err)
	}
	if len(records) == 0 {
		return nil, ierr.NewError("csv file is empty").
			WithHint("The uploaded file has no header row").
			Mark(ierr.ErrValidation)
	}

	header := normalizeHeader(records[0])
	for _, col := range spec.required {
		if csvimport.ColumnIndex(header, col) < 0 {
			return nil, ierr.NewErrorf("missing column %s", col).
				WithHintf("The file must have a %q column", col).
				WithReportableDetails(map[string]any{"required": spec.required, "header": header}).
				Mark(ierr.ErrValidation)
		}
	}

	data := records[1:]
	if limit := s.Config.Import.MaxRows; limit > 0 && len(data) > limit {
		return nil, ierr.NewErrorf("csv has %d rows, limit is %d", len(data), limit).
			WithHintf("Split the file into parts of at most %d rows", limit).
			Mark(ierr.ErrValidation)
	}

	// Line numbers are 1-based with the header on line 1.
	firstLine := make(map[string]int, len(data))
	for i, row := range data {
		row = fitRow(row, len(header))
		data[i] = row
		if _, seen := firstLine[csvimport.ContentKey(row)]; !seen {
			firstLine[csvimport.ContentKey(row)] = i + 2
		}
	}

	deduped := csvimport.Deduplicate(data, spec.keyFn(header))
	res := &dto.ImportResult{
		Entity:  entity,
		Total:   len(data),
		Skipped: deduped.Skipped,
	}

	lines := make([]int, len(deduped.Rows))
	for i, row := range deduped.Rows {
		lines[i] = firstLine[csvimport.ContentKey(row)]
	}

	spec.insert(ctx, s, header, deduped.Rows, lines, res)

	entityLabel := string(entity)
	s.Metrics.AddImportRows(entityLabel, metrics.OutcomeImported, res.Imported)
	s.Metrics.AddImportRows(entityLabel, metrics.OutcomeSkipped, res.Skipped)
	s.Metrics.AddImportRows(entityLabel, metrics.OutcomeFailed, res.Failed)

	s.Logger.WithContext(ctx).Infow("csv import finished",
		"entity", entity,
		"total", res.Total,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *importService) record(res *dto.ImportResult, line int, err error) {
	if err == nil {
		res.Imported++
		return
	}
	res.Failed++
	if len(res.Errors) >= maxReportedImportErrors {
		return
	}
	msg := ierr.HintOf(err)
	if msg == "" {
		msg = err.Error()
	}
	res.Errors = append(res.Errors, dto.ImportRowError{Row: line, Message: msg})
}

// normalizeHeader lower-cases names and maps spaces to underscores so
// "Serial Number" matches the serial_number column.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		out[i] = strings.ReplaceAll(strings.ToLower(h), " ", "_")
	}
	return out
}

// fitRow pads or truncates a row to n fields.
func fitRow(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

func csvParseError(err error) error {
	return ierr.WithError(err).
		WithHint("The file is not valid CSV").
		Mark(ierr.ErrValidation)
}

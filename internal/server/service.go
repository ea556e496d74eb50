// Package server exposes the extraction engine over gRPC.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/export"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

// Metadata keys read from incoming calls. The request ID is echoed back in
// the response header.
const (
	MDFilename  = "x-filename"
	MDRequestID = "x-request-id"
)

// Processor is the part of pipeline.Processor the service uses.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document) (*pipeline.Outcome, error)
	ProcessImage(ctx context.Context, doc pipeline.Document) (*pipeline.Outcome, error)
}

type ExtractionService struct {
	proc     Processor
	exporter *export.Service
	maxBytes int
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*ExtractionService)

func WithMaxUploadBytes(n int) Option {
	return func(s *ExtractionService) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *ExtractionService) { s.timeout = d }
}

func NewExtractionService(proc Processor, exporter *export.Service, logger *slog.Logger, opts ...Option) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	s := &ExtractionService{proc: proc, exporter: exporter, maxBytes: 32 << 20, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ExtractDocument runs a PDF through the engine. Content failures are
// reported inside the envelope with status "error"; only bad requests,
// cancellation and deadlines become gRPC errors.
func (s *ExtractionService) ExtractDocument(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	resp, err := s.extract(ctx, req, false)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// ExtractImage runs a single photographed page through the image pipeline.
func (s *ExtractionService) ExtractImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	resp, err := s.extract(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// ExportTables extracts a PDF and returns the result as an XLSX workbook.
func (s *ExtractionService) ExportTables(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	resp, err := s.extract(ctx, req, false)
	if err != nil {
		return nil, err
	}
	if resp.Status != constants.StatusSuccess {
		return nil, common.InvalidArgumentError(resp.Message)
	}
	data, err := s.exporter.ResponseXLSX(resp)
	if err != nil {
		s.logger.Error("export failed", "request_id", resp.RequestID, "error", err)
		return nil, common.InternalError("export failed")
	}
	return wrapperspb.Bytes(data), nil
}

func (s *ExtractionService) extract(ctx context.Context, req *wrapperspb.BytesValue, image bool) (pipeline.Response, error) {
	data := req.GetValue()
	if len(data) == 0 {
		return pipeline.Response{}, common.InvalidArgumentError("document bytes are required")
	}
	if len(data) > s.maxBytes {
		return pipeline.Response{}, common.InvalidArgumentErrorf("document is %d bytes, limit is %d", len(data), s.maxBytes)
	}

	doc := pipeline.Document{Data: data}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		doc.Filename = first(md.Get(MDFilename))
		doc.RequestID = first(md.Get(MDRequestID))
	}
	ctx, doc.RequestID = common.EnsureRequestID(withRequestID(ctx, doc.RequestID))
	if err := grpc.SetHeader(ctx, metadata.Pairs(MDRequestID, doc.RequestID)); err != nil {
		s.logger.Debug("set request id header failed", "request_id", doc.RequestID, "error", err)
	}

	ctx, cancel := common.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		out *pipeline.Outcome
		err error
	)
	if image {
		out, err = s.proc.ProcessImage(ctx, doc)
	} else {
		out, err = s.proc.Process(ctx, doc)
	}
	if err != nil && common.IsCanceled(err) {
		s.logger.Warn("extraction aborted", "request_id", doc.RequestID, "error", err)
		return pipeline.Response{}, common.ToStatus(err)
	}
	if err != nil && !common.IsKind(err, common.InputError) {
		s.logger.Error("extraction failed", "request_id", doc.RequestID, "error", err)
		return pipeline.Response{}, common.ToStatus(err)
	}
	return pipeline.NewResponse(doc, out, err), nil
}

func withRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return common.WithRequestID(ctx, id)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// toStruct converts the envelope through its JSON form, which also applies
// the ordered scan encoding.
func toStruct(resp pipeline.Response) (*structpb.Struct, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("marshal response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, common.InternalError(fmt.Sprintf("unmarshal response: %v", err))
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("build struct: %v", err))
	}
	return st, nil
}

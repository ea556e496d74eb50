package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "docfields.v1.Extraction"

// ExtractionServer is the server API of docfields.v1.Extraction. Requests
// carry raw document bytes; the filename and request ID travel as metadata.
type ExtractionServer interface {
	ExtractDocument(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	ExtractImage(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	ExportTables(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractDocument", Handler: extractDocumentHandler},
		{MethodName: "ExtractImage", Handler: extractImageHandler},
		{MethodName: "ExportTables", Handler: exportTablesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docfields/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

func unary[Resp any](
	method string,
	call func(ExtractionServer, context.Context, *wrapperspb.BytesValue) (Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.BytesValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExtractionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExtractionServer), ctx, req.(*wrapperspb.BytesValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	extractDocumentHandler = unary("ExtractDocument", ExtractionServer.ExtractDocument)
	extractImageHandler    = unary("ExtractImage", ExtractionServer.ExtractImage)
	exportTablesHandler    = unary("ExportTables", ExtractionServer.ExportTables)
)

// ExtractionClient calls docfields.v1.Extraction.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) ExtractDocument(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ExtractDocument", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) ExtractImage(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ExtractImage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) ExportTables(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ExportTables", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

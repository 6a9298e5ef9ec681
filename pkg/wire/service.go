package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "swarmreport.SwarmReportService"

	SendSystemReportMethod = "/" + ServiceName + "/SendSystemReport"
	GetSwarmReportMethod   = "/" + ServiceName + "/GetSwarmReport"
)

// SwarmReportServiceClient is the client API for SwarmReportService.
type SwarmReportServiceClient interface {
	SendSystemReport(ctx context.Context, in *SystemReport, opts ...grpc.CallOption) (*ReportResponse, error)
	GetSwarmReport(ctx context.Context, in *SwarmReportRequest, opts ...grpc.CallOption) (*SwarmReportResponse, error)
}

type swarmReportServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSwarmReportServiceClient returns a client that sends every call with the
// JSON codec.
func NewSwarmReportServiceClient(cc grpc.ClientConnInterface) SwarmReportServiceClient {
	return &swarmReportServiceClient{cc: cc}
}

func (c *swarmReportServiceClient) SendSystemReport(ctx context.Context, in *SystemReport, opts ...grpc.CallOption) (*ReportResponse, error) {
	out := new(ReportResponse)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, SendSystemReportMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *swarmReportServiceClient) GetSwarmReport(ctx context.Context, in *SwarmReportRequest, opts ...grpc.CallOption) (*SwarmReportResponse, error) {
	out := new(SwarmReportResponse)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, GetSwarmReportMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SwarmReportServiceServer is the server API for SwarmReportService.
// Implementations must embed UnimplementedSwarmReportServiceServer.
type SwarmReportServiceServer interface {
	SendSystemReport(context.Context, *SystemReport) (*ReportResponse, error)
	GetSwarmReport(context.Context, *SwarmReportRequest) (*SwarmReportResponse, error)
	mustEmbedUnimplementedSwarmReportServiceServer()
}

// UnimplementedSwarmReportServiceServer answers every method with codes.Unimplemented.
type UnimplementedSwarmReportServiceServer struct{}

func (UnimplementedSwarmReportServiceServer) SendSystemReport(context.Context, *SystemReport) (*ReportResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendSystemReport not implemented")
}

func (UnimplementedSwarmReportServiceServer) GetSwarmReport(context.Context, *SwarmReportRequest) (*SwarmReportResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSwarmReport not implemented")
}

func (UnimplementedSwarmReportServiceServer) mustEmbedUnimplementedSwarmReportServiceServer() {}

// RegisterSwarmReportServiceServer registers srv on s.
func RegisterSwarmReportServiceServer(s grpc.ServiceRegistrar, srv SwarmReportServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func sendSystemReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SystemReport)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SwarmReportServiceServer).SendSystemReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SendSystemReportMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SwarmReportServiceServer).SendSystemReport(ctx, req.(*SystemReport))
	}
	return interceptor(ctx, in, info, handler)
}

func getSwarmReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SwarmReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SwarmReportServiceServer).GetSwarmReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetSwarmReportMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SwarmReportServiceServer).GetSwarmReport(ctx, req.(*SwarmReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for SwarmReportService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SwarmReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendSystemReport", Handler: sendSystemReportHandler},
		{MethodName: "GetSwarmReport", Handler: getSwarmReportHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swarmreport.proto",
}

package repository

import (
	"context"
	"fmt"

	"jobboard_chat_service/internal/chat/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	memberServiceName = "member.MemberService"
	findMemberMethod  = "/" + memberServiceName + "/FindMember"
)

// FindMemberRequest grpc request, 以 structpb.Struct 傳輸
type FindMemberRequest struct {
	MemberID string
}

func (r *FindMemberRequest) toStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"member_id": structpb.NewStringValue(r.MemberID),
	}}
}

// FindMemberResponse grpc response
type FindMemberResponse struct {
	MemberID string
	Username string
	Role     string
}

func (r *FindMemberResponse) toStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"member_id": structpb.NewStringValue(r.MemberID),
		"username":  structpb.NewStringValue(r.Username),
		"role":      structpb.NewStringValue(r.Role),
	}}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// MemberDirectory participant display metadata
type MemberDirectory interface {
	FindMember(ctx context.Context, memberID string) (*domain.Participant, error)
}

type grpcMemberDirectory struct {
	conn grpc.ClientConnInterface
}

// NewMemberDirectory create a MemberDirectory over a member service connection
func NewMemberDirectory(conn grpc.ClientConnInterface) MemberDirectory {
	return &grpcMemberDirectory{conn: conn}
}

func (m *grpcMemberDirectory) FindMember(ctx context.Context, memberID string) (*domain.Participant, error) {
	req := &FindMemberRequest{MemberID: memberID}
	resp := new(structpb.Struct)
	if err := m.conn.Invoke(ctx, findMemberMethod, req.toStruct(), resp); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find member %s: %w", memberID, err)
	}
	return &domain.Participant{
		MemberID: stringField(resp, "member_id"),
		Username: stringField(resp, "username"),
		Role:     stringField(resp, "role"),
	}, nil
}

// MemberServiceServer server side of member.MemberService
type MemberServiceServer interface {
	FindMember(ctx context.Context, req *FindMemberRequest) (*FindMemberResponse, error)
}

// RegisterMemberServiceServer register srv on s
func RegisterMemberServiceServer(s grpc.ServiceRegistrar, srv MemberServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: memberServiceName,
		HandlerType: (*MemberServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "FindMember",
				Handler:    findMemberHandler,
			},
		},
		Streams: []grpc.StreamDesc{},
	}, srv)
}

func findMemberHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := &FindMemberRequest{MemberID: stringField(req.(*structpb.Struct), "member_id")}
		resp, err := srv.(MemberServiceServer).FindMember(ctx, r)
		if err != nil {
			return nil, err
		}
		return resp.toStruct(), nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: findMemberMethod,
	}
	return interceptor(ctx, in, info, call)
}

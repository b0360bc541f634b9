package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"user-roster/internal/usecase/user"
	"user-roster/pkg/logger"
)

// UserServiceServer implements the gRPC roster service
type UserServiceServer struct {
	uc  user.Usecase
	log *zap.Logger
}

var _ RosterServer = (*UserServiceServer)(nil)

// NewUserServiceServer creates a new gRPC roster service server
func NewUserServiceServer(uc user.Usecase, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{uc: uc, log: log}
}

// ListUsers handles gRPC ListUsers request
func (s *UserServiceServer) ListUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	resp, err := s.uc.ListUsers(ctx, user.ListUsersRequest{})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("grpc list users failed", zap.Error(err))
		return nil, err
	}

	values := make([]*structpb.Value, 0, len(resp.Users))
	for _, u := range resp.Users {
		st, err := userStruct(u)
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(st))
	}

	return &structpb.ListValue{Values: values}, nil
}

// AddUser handles gRPC AddUser request. Missing or non-string fields count as empty.
func (s *UserServiceServer) AddUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.uc.AddUser(ctx, user.AddUserRequest{
		Name:  stringField(req, "name"),
		Email: stringField(req, "email"),
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("grpc add user failed", zap.Error(err))
		return nil, err
	}

	return userStruct(resp.User)
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	resp, err := s.uc.GetUser(ctx, user.GetUserRequest{ID: req.GetValue()})
	if err != nil {
		return nil, err
	}

	return userStruct(resp.User)
}

func userStruct(u user.User) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	})
}

func stringField(st *structpb.Struct, key string) string {
	if st == nil {
		return ""
	}
	v, ok := st.GetFields()[key]
	if !ok {
		return ""
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return ""
	}
	return v.GetStringValue()
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// rosterClient calls the UserRoster service over a client connection.
type rosterClient struct {
	cc grpc.ClientConnInterface
}

// newRosterClient returns a client bound to cc.
func newRosterClient(cc grpc.ClientConnInterface) *rosterClient {
	return &rosterClient{cc: cc}
}

// ListUsers returns every user as a list of {id, name, email} structs.
func (c *rosterClient) ListUsers(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listUsersMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AddUser appends a user and returns the stored record.
func (c *rosterClient) AddUser(ctx context.Context, name, email string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"name": name, "email": email})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, addUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches one user by ID.
func (c *rosterClient) GetUser(ctx context.Context, id int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getUserMethod, wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

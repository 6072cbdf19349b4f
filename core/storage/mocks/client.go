package mocks

import (
	"context"
	"io"
	"io/fs"

	"itunes2storage/core/storage"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of storage.Client
type Client struct {
	mock.Mock
}

var _ storage.Client = (*Client)(nil)

func (m *Client) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	args := m.Called(ctx, name)
	if info, ok := args.Get(0).(fs.FileInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) MakeDir(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *Client) ReadFile(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) PutFile(ctx context.Context, name string, reader io.Reader) error {
	args := m.Called(ctx, name, reader)
	return args.Error(0)
}

func (m *Client) CopyFile(ctx context.Context, src, dst string) error {
	args := m.Called(ctx, src, dst)
	return args.Error(0)
}

func (m *Client) RemoveFile(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *Client) ListFiles(ctx context.Context, dir string, opts storage.ListOptions) ([]string, error) {
	args := m.Called(ctx, dir, opts)
	if files, ok := args.Get(0).([]string); ok {
		return files, args.Error(1)
	}
	return nil, args.Error(1)
}

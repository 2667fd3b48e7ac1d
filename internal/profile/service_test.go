package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/repofolio/repofolio/internal/cache"
	"github.com/repofolio/repofolio/internal/db"
	apperrors "github.com/repofolio/repofolio/internal/errors"
)

// MockStore is a mock implementation of db.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetProfile(ctx context.Context, login string) (json.RawMessage, error) {
	args := m.Called(ctx, login)
	doc, _ := args.Get(0).(json.RawMessage)
	return doc, args.Error(1)
}

func (m *MockStore) SaveProfile(ctx context.Context, login string, document json.RawMessage) error {
	args := m.Called(ctx, login, document)
	return args.Error(0)
}

func (m *MockStore) DeleteProfile(ctx context.Context, login string) error {
	args := m.Called(ctx, login)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	return nil
}

func newTestService(t *testing.T, store db.Store) *Service {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	c := cache.NewCache(cache.NewMemoryBackend(0), 0, logger)
	t.Cleanup(func() { c.Close() })
	return NewService(store, c, 0, logger)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("read through cache", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetProfile", ctx, "octo").Return(json.RawMessage(`{"headline":"SRE"}`), nil).Once()
		svc := newTestService(t, store)

		for i := 0; i < 3; i++ {
			doc, err := svc.Get(ctx, "octo")
			require.NoError(t, err)
			assert.JSONEq(t, `{"headline":"SRE"}`, string(doc))
		}
		store.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetProfile", ctx, "ghost").Return(nil, db.ErrProfileNotFound)
		svc := newTestService(t, store)

		_, err := svc.Get(ctx, "ghost")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetProfile", ctx, "octo").Return(nil, errors.New("disk full"))
		svc := newTestService(t, store)

		_, err := svc.Get(ctx, "octo")
		assert.Equal(t, apperrors.ErrInternal, apperrors.TypeOf(err))
	})

	t.Run("empty login", func(t *testing.T) {
		svc := newTestService(t, new(MockStore))
		_, err := svc.Get(ctx, "")
		assert.True(t, apperrors.IsInvalidInput(err))
	})
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "object", body: "{\n  \"headline\": \"SRE\"\n}"},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "string", body: `"hello"`, wantErr: true},
		{name: "invalid json", body: `{"headline":`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			store.On("SaveProfile", ctx, "octo", json.RawMessage(`{"headline":"SRE"}`)).Return(nil)
			svc := newTestService(t, store)

			doc, err := svc.Save(ctx, "octo", json.RawMessage(tt.body))
			if tt.wantErr {
				assert.True(t, apperrors.IsInvalidInput(err))
				store.AssertNotCalled(t, "SaveProfile", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, `{"headline":"SRE"}`, string(doc))

			// served from the refreshed cache
			got, err := svc.Get(ctx, "octo")
			require.NoError(t, err)
			assert.JSONEq(t, `{"headline":"SRE"}`, string(got))
			store.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
		})
	}
}

func TestService_SaveStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("SaveProfile", ctx, "octo", mock.Anything).Return(errors.New("read-only file system"))
	svc := newTestService(t, store)

	_, err := svc.Save(ctx, "octo", json.RawMessage(`{}`))
	assert.Equal(t, apperrors.ErrInternal, apperrors.TypeOf(err))
}

func TestService_WithFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := newTestService(t, store)

	_, err = svc.Save(ctx, "octo", json.RawMessage(`{"pinned":[1,2,3]}`))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "octo")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pinned":[1,2,3]}`, string(got))

	require.NoError(t, svc.Delete(ctx, "octo"))
	_, err = svc.Get(ctx, "octo")
	assert.True(t, apperrors.IsNotFound(err))
}

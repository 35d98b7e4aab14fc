package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educonnect/educonnect-web/internal/adapters/memstore"
	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/ports"
	"github.com/educonnect/educonnect-web/internal/testutil"
)

// recordingStorage logs each mutation and can fail reads or writes.
type recordingStorage struct {
	ports.DurableStorage

	mu      sync.Mutex
	ops     []string
	failGet bool
	failSet bool
}

func (r *recordingStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if r.failGet {
		return "", false, errors.New("storage offline")
	}
	return r.DurableStorage.GetItem(ctx, key)
}

func (r *recordingStorage) SetItem(ctx context.Context, key, value string) error {
	r.mu.Lock()
	r.ops = append(r.ops, "set "+key)
	r.mu.Unlock()
	if r.failSet {
		return errors.New("storage offline")
	}
	return r.DurableStorage.SetItem(ctx, key, value)
}

func (r *recordingStorage) RemoveItem(ctx context.Context, key string) error {
	r.mu.Lock()
	r.ops = append(r.ops, "remove "+key)
	r.mu.Unlock()
	return r.DurableStorage.RemoveItem(ctx, key)
}

func newRecording() *recordingStorage {
	return &recordingStorage{DurableStorage: memstore.NewDeviceStorage().ForDevice("dev")}
}

func TestStore_LoadEmpty(t *testing.T) {
	s := NewStore(newRecording(), nil)
	sess := s.Load(context.Background())
	assert.Equal(t, domainauth.Session{}, sess)
	assert.False(t, s.IsAuthenticated())
}

func TestStore_SetTokenOnlyThenUser(t *testing.T) {
	storage := newRecording()
	s := NewStore(storage, nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tok", nil))
	assert.Equal(t, []string{"set auth_token", "remove auth:state"}, storage.ops)
	assert.False(t, s.IsAuthenticated())

	reloaded := NewStore(storage, nil).Load(ctx)
	assert.Equal(t, "tok", reloaded.Token)
	assert.Nil(t, reloaded.User)

	storage.ops = nil
	user := testutil.NewUser().WithRole(domainauth.RoleTeacher).Build()
	require.NoError(t, s.Set(ctx, "tok", user))
	assert.Equal(t, []string{"set auth_token", "set auth:state"}, storage.ops)
	assert.True(t, s.IsAuthenticated())

	reloaded = NewStore(storage, nil).Load(ctx)
	assert.Equal(t, "tok", reloaded.Token)
	require.NotNil(t, reloaded.User)
	assert.Equal(t, domainauth.RoleTeacher, reloaded.User.Role)
}

func TestStore_Clear(t *testing.T) {
	storage := newRecording()
	s := NewStore(storage, nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tok", testutil.NewUser().Build()))
	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.Equal(t, domainauth.Session{}, NewStore(storage, nil).Load(ctx))
}

func TestStore_CorruptStateFallsBackToToken(t *testing.T) {
	storage := newRecording()
	ctx := context.Background()
	require.NoError(t, storage.DurableStorage.SetItem(ctx, ports.KeyAuthState, "{not json"))
	require.NoError(t, storage.DurableStorage.SetItem(ctx, ports.KeyAuthToken, "tok"))

	sess := NewStore(storage, nil).Load(ctx)
	assert.Equal(t, "tok", sess.Token)
	assert.Nil(t, sess.User)
}

func TestStore_StorageFailureReadsAsNoSession(t *testing.T) {
	storage := newRecording()
	ctx := context.Background()
	require.NoError(t, storage.DurableStorage.SetItem(ctx, ports.KeyAuthToken, "tok"))
	storage.failGet = true

	assert.Equal(t, domainauth.Session{}, NewStore(storage, nil).Load(ctx))
}

func TestStore_SetFailureStillUpdatesMemory(t *testing.T) {
	storage := newRecording()
	storage.failSet = true
	s := NewStore(storage, nil)

	err := s.Set(context.Background(), "tok", testutil.NewUser().Build())
	require.Error(t, err)
	assert.True(t, s.IsAuthenticated())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore(newRecording(), nil)
	user := testutil.NewUser().WithName("Original").Build()
	require.NoError(t, s.Set(context.Background(), "tok", user))

	user.Name = "Mutated"
	snap := s.Snapshot()
	snap.User.Name = "Also mutated"

	assert.Equal(t, "Original", s.User().Name)
}

func TestPendingStore_Lifecycle(t *testing.T) {
	p := NewPendingStore(newRecording(), nil)
	ctx := context.Background()

	_, ok := p.Peek(ctx)
	assert.False(t, ok)

	require.NoError(t, p.Save(ctx, domainauth.PendingVerification{UserID: "9", PhoneNumber: "+966501234567"}))

	rec, ok := p.Peek(ctx)
	require.True(t, ok)
	assert.Equal(t, domainauth.ID("9"), rec.UserID)
	assert.Equal(t, "966501234567", rec.PhoneNumber)

	rec, ok = p.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, domainauth.ID("9"), rec.UserID)

	_, ok = p.Peek(ctx)
	assert.False(t, ok)
}

func TestPendingStore_NumericUserIDAndCorruptRecord(t *testing.T) {
	storage := newRecording()
	p := NewPendingStore(storage, nil)
	ctx := context.Background()

	require.NoError(t, storage.DurableStorage.SetItem(ctx, ports.KeyPendingVerification, `{"user_id":17,"phone_number":"9665"}`))
	rec, ok := p.Peek(ctx)
	require.True(t, ok)
	assert.Equal(t, domainauth.ID("17"), rec.UserID)

	require.NoError(t, storage.DurableStorage.SetItem(ctx, ports.KeyPendingVerification, `[]`))
	_, ok = p.Peek(ctx)
	assert.False(t, ok)
}

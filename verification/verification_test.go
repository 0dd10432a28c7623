package verification

import (
	"context"
	"regexp"
	"rovify-backend/response"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Take(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

func (m *memStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	m.ttls[key] = ttl
	return n, nil
}

type fakeSender struct {
	to, message string
}

func (f *fakeSender) Send(_ context.Context, to, message string) (string, error) {
	f.to, f.message = to, message
	return "SM1", nil
}

var codePattern = regexp.MustCompile(`\d{6}$`)

func TestSendAndVerify(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sender := &fakeSender{}
	s := New(store, sender)

	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+15550001111"))
	assert.Equal(t, "+15550001111", sender.to)
	assert.Equal(t, codeTTL, store.ttls["otp:payout:org-1"])

	code := codePattern.FindString(sender.message)
	require.Len(t, code, 6)

	require.NoError(t, s.Verify(ctx, PurposePayout, "org-1", code))

	err := s.Verify(ctx, PurposePayout, "org-1", code)
	assert.Equal(t, response.OTPExpired(), err, "a code is single use")
}

func TestVerifyWrongCode(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	s := New(newMemStore(), sender)
	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+1"))

	wrong := "000000"
	if codePattern.FindString(sender.message) == wrong {
		wrong = "111111"
	}
	assert.Equal(t, response.OTPMismatch(), s.Verify(ctx, PurposePayout, "org-1", wrong))
}

func TestVerifyWithoutPendingCode(t *testing.T) {
	s := New(newMemStore(), &fakeSender{})
	assert.Equal(t, response.OTPExpired(), s.Verify(context.Background(), PurposePayout, "org-2", "123456"))
}

func TestVerifyAfterPeriodElapsed(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	s := New(newMemStore(), sender)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }
	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+1"))

	s.now = func() time.Time { return start.Add(20 * time.Minute) }
	err := s.Verify(ctx, PurposePayout, "org-1", codePattern.FindString(sender.message))
	assert.Equal(t, response.OTPMismatch(), err)
}

func wrongCode(message string) string {
	if codePattern.FindString(message) == "000000" {
		return "111111"
	}
	return "000000"
}

func TestVerifyLocksAfterRepeatedWrongCodes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sender := &fakeSender{}
	s := New(store, sender)
	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+1"))
	code := codePattern.FindString(sender.message)
	wrong := wrongCode(sender.message)

	for i := 1; i < maxAttempts; i++ {
		assert.Equal(t, response.OTPMismatch(), s.Verify(ctx, PurposePayout, "org-1", wrong))
	}
	assert.Equal(t, codeTTL, store.ttls["otp:payout:org-1:attempts"])

	assert.Equal(t, response.OTPLocked(), s.Verify(ctx, PurposePayout, "org-1", wrong))
	assert.Equal(t, response.OTPExpired(), s.Verify(ctx, PurposePayout, "org-1", code), "the secret is dropped on lockout")
}

func TestSendResetsAttempts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sender := &fakeSender{}
	s := New(store, sender)
	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+1"))

	for i := 1; i < maxAttempts; i++ {
		assert.Equal(t, response.OTPMismatch(), s.Verify(ctx, PurposePayout, "org-1", wrongCode(sender.message)))
	}

	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+1"))
	assert.Equal(t, response.OTPMismatch(), s.Verify(ctx, PurposePayout, "org-1", wrongCode(sender.message)))
	require.NoError(t, s.Verify(ctx, PurposePayout, "org-1", codePattern.FindString(sender.message)))
}

func TestVerifyPassesOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	s := New(newMemStore(), sender)
	require.NoError(t, s.Send(ctx, PurposePayout, "org-1", "+1"))
	code := codePattern.FindString(sender.message)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		passed int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Verify(ctx, PurposePayout, "org-1", code) == nil {
				mu.Lock()
				passed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, passed)
}

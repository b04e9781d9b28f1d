package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-userforms/pkg/errutil"
	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/host/memory"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newHost(t *testing.T, opts ...memory.Option) (*memory.Host, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	opts = append([]memory.Option{
		memory.WithBcryptCost(bcrypt.MinCost),
		memory.WithClock(clk.Now),
		memory.WithTokenSecret([]byte("test-secret")),
	}, opts...)
	return memory.New(opts...), clk
}

func TestCreateAccountRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	h, _ := newHost(t)

	id, err := h.CreateAccount(ctx, "jane@example.com", "secret1", "jane@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	exists, err := h.AccountExistsByLoginOrEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = h.CreateAccount(ctx, "jane@example.com", "other12", "jane@example.com")
	require.ErrorIs(t, err, host.ErrAccountExists)
	errutil.AssertErrorCode(t, err, "ACCOUNT_EXISTS")
}

func TestConcurrentCreateOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	h, _ := newHost(t)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.CreateAccount(ctx, "race@example.com", "secret1", "race@example.com")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, host.ErrAccountExists)
	}
	assert.Equal(t, 1, succeeded)
}

func TestVerifyPasswordAndSession(t *testing.T) {
	ctx := context.Background()
	h, _ := newHost(t)
	_, err := h.CreateAccount(ctx, "jane@example.com", "secret1", "jane@example.com")
	require.NoError(t, err)

	account, err := h.GetAccountByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	ok, err := h.VerifyPassword(ctx, "secret1", account.PasswordHash, account.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyPassword(ctx, "wrong", account.PasswordHash, account.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.EstablishSession(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, host.ErrSessionFailed)

	signedIn, err := h.EstablishSession(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, signedIn.ID)

	_, err = h.GetAccountByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, host.ErrAccountNotFound)
}

func TestResetKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	h, clk := newHost(t, memory.WithResetKeyTTL(time.Hour))
	_, err := h.CreateAccount(ctx, "jane@example.com", "secret1", "jane@example.com")
	require.NoError(t, err)
	account, err := h.GetAccountByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	key, err := h.IssueResetKey(ctx, account)
	require.NoError(t, err)
	require.Len(t, key, memory.ResetKeyBytes*2)

	_, err = h.ValidateResetKey(ctx, "bogus", account.Login)
	assert.ErrorIs(t, err, host.ErrResetKeyInvalid)

	validated, err := h.ValidateResetKey(ctx, key, account.Login)
	require.NoError(t, err)
	assert.Equal(t, account.ID, validated.ID)

	require.NoError(t, h.SetPassword(ctx, validated, "newsecret"))
	_, err = h.EstablishSession(ctx, account.Login, "newsecret")
	require.NoError(t, err)

	_, err = h.ValidateResetKey(ctx, key, account.Login)
	assert.ErrorIs(t, err, host.ErrResetKeyInvalid, "key must be single use")

	key, err = h.IssueResetKey(ctx, account)
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)
	_, err = h.ValidateResetKey(ctx, key, account.Login)
	assert.ErrorIs(t, err, host.ErrResetKeyExpired)
	errutil.AssertErrorCode(t, err, "RESET_KEY_EXPIRED")
}

func TestAntiForgeryTokens(t *testing.T) {
	ctx := context.Background()
	h, clk := newHost(t, memory.WithTokenTTL(time.Minute))

	token, err := h.IssueAntiForgeryToken(ctx, "userforms")
	require.NoError(t, err)

	assert.True(t, h.VerifyAntiForgeryToken(ctx, token, "userforms"))
	assert.False(t, h.VerifyAntiForgeryToken(ctx, token, "profile"), "purpose must match")
	assert.False(t, h.VerifyAntiForgeryToken(ctx, token+"x", "userforms"))
	assert.False(t, h.VerifyAntiForgeryToken(ctx, "", "userforms"))

	other := memory.New(memory.WithTokenSecret([]byte("different")), memory.WithClock(clk.Now))
	assert.False(t, other.VerifyAntiForgeryToken(ctx, token, "userforms"), "signature must match")

	clk.Advance(2 * time.Minute)
	assert.False(t, h.VerifyAntiForgeryToken(ctx, token, "userforms"), "token must expire")
}

func TestMetadataAndCapabilities(t *testing.T) {
	ctx := context.Background()
	h, _ := newHost(t, memory.WithAdmins("admin"))
	id, err := h.CreateAccount(ctx, "jane@example.com", "secret1", "jane@example.com")
	require.NoError(t, err)

	hobbies := []string{"tennis", "football"}
	require.NoError(t, h.WriteMetadata(ctx, id, "user_hobbies", hobbies))
	hobbies[0] = "mutated"

	value, err := h.ReadMetadata(ctx, id, "user_hobbies")
	require.NoError(t, err)
	assert.Equal(t, []string{"tennis", "football"}, value)

	missing, err := h.ReadMetadata(ctx, id, "user_city")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, h.WriteMetadata(ctx, "nope", "k", "v"), host.ErrAccountNotFound)

	assert.False(t, h.CurrentViewerCanEdit(ctx, id))
	assert.True(t, h.CurrentViewerCanEdit(memory.WithViewer(ctx, id), id))
	assert.True(t, h.CurrentViewerCanEdit(memory.WithViewer(ctx, "admin"), id))
	assert.False(t, h.CurrentViewerCanEdit(memory.WithViewer(ctx, "someone"), id))
}

func TestOutbox(t *testing.T) {
	ctx := context.Background()
	outbox := &memory.Outbox{}
	h, _ := newHost(t, memory.WithMailer(outbox))

	require.NoError(t, h.SendEmail(ctx, host.Email{To: "a@example.com", Subject: "hi"}))
	require.Len(t, outbox.Messages(), 1)

	outbox.Fail = true
	assert.ErrorIs(t, h.SendEmail(ctx, host.Email{To: "a@example.com"}), host.ErrMailFailed)
}

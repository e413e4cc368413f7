package pending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
)

func newTestStore(t *testing.T) (*Store, *cache.Client) {
	t.Helper()
	client := cache.NewClient(cache.NewMemoryKV(), zap.NewNop().Sugar())
	return NewStore(client), client
}

func TestComponentInsertGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	id, err := store.InsertComponent(ctx, &PendingComponent{
		Kind:       ComponentPostInChat,
		PostInChat: &PostInChat{Content: "hello", AuthorID: 30},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	component, err := store.GetComponent(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, component)
	assert.Equal(t, ComponentPostInChat, component.Kind)
	require.NotNil(t, component.PostInChat)
	assert.Equal(t, "hello", component.PostInChat.Content)

	component, err = store.GetComponent(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, component)
}

func TestModalInsertGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	id, err := store.InsertModal(ctx, &PendingModal{
		Kind:     ModalSanction,
		Sanction: &PendingSanction{InteractionID: 7, Kind: "kick", UserID: 30},
	})
	require.NoError(t, err)

	modal, err := store.GetModal(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, modal)
	require.NotNil(t, modal.Sanction)
	assert.Equal(t, "kick", modal.Sanction.Kind)
}

func TestCaptchaLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	captcha := &PendingCaptcha{
		GuildID:   1,
		MemberID:  30,
		Code:      "abcde",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.InsertCaptcha(ctx, captcha))

	stored, err := store.GetCaptcha(ctx, 1, 30)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "abcde", stored.Code)

	// One captcha per (guild, member): a second insert replaces the first.
	replacement := &PendingCaptcha{
		GuildID:   1,
		MemberID:  30,
		Code:      "fghij",
		ExpiresAt: captcha.ExpiresAt,
	}
	require.NoError(t, store.InsertCaptcha(ctx, replacement))

	stored, err = store.GetCaptcha(ctx, 1, 30)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "fghij", stored.Code)

	require.NoError(t, store.DeleteCaptcha(ctx, 1, 30))
	stored, err = store.GetCaptcha(ctx, 1, 30)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRegenerateCaptcha(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	captcha := &PendingCaptcha{
		GuildID:   1,
		MemberID:  30,
		Code:      "abcde",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.InsertCaptcha(ctx, captcha))

	require.NoError(t, store.RegenerateCaptcha(ctx, captcha, "fghij"))
	assert.Equal(t, uint8(1), captcha.RegenerateCount)

	require.NoError(t, store.RegenerateCaptcha(ctx, captcha, "klmno"))
	assert.Equal(t, uint8(2), captcha.RegenerateCount)

	// The limit refuses further regenerations but keeps the entry: the
	// expiry timer still applies.
	err := store.RegenerateCaptcha(ctx, captcha, "pqrst")
	assert.ErrorIs(t, err, ErrMaxRegenerate)

	stored, err := store.GetCaptcha(ctx, 1, 30)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "klmno", stored.Code)
}

func TestNewCode(t *testing.T) {
	code := NewCode()
	assert.Len(t, code, 5)
	for _, r := range code {
		assert.GreaterOrEqual(t, r, 'a')
		assert.LessOrEqual(t, r, 'z')
	}
}

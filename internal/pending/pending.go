// Package pending stores short-lived interaction state with bounded TTLs:
// message components, modals and captcha challenges.
package pending

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

const (
	// ComponentExpiry bounds how long a component interaction can be resumed.
	ComponentExpiry = 5 * time.Minute
	// ModalExpiry bounds how long a modal submission can be resumed.
	ModalExpiry = 5 * time.Minute

	// MaxRegenerate caps how many times a member can request a new captcha
	// code.
	MaxRegenerate = 2

	// captchaMargin keeps expired captcha records readable by the expiry
	// watcher until it had a chance to act on them.
	captchaMargin = 5 * time.Minute
)

// ErrMaxRegenerate is returned when a captcha code has been regenerated too
// many times. The pending entry is kept and keeps expiring normally.
var ErrMaxRegenerate = errors.New("pending: captcha regenerated too many times")

// ComponentKind discriminates PendingComponent payloads.
type ComponentKind string

const (
	// ComponentPostInChat is the "post in chat" button under ephemeral
	// responses.
	ComponentPostInChat ComponentKind = "post-in-chat"
)

// PendingComponent is the state behind a message component, recovered by the
// handler when the user clicks it.
type PendingComponent struct {
	ID   string        `msgpack:"id"`
	Kind ComponentKind `msgpack:"kind"`

	PostInChat *PostInChat `msgpack:"post_in_chat,omitempty"`
}

// PostInChat holds an ephemeral response to repost publicly on demand.
type PostInChat struct {
	Content  string          `msgpack:"content"`
	AuthorID model.Snowflake `msgpack:"author_id"`
}

func (p *PendingComponent) Key() string           { return ComponentKey(p.ID) }
func (p *PendingComponent) Expiry() time.Duration { return ComponentExpiry }

// ModalKind discriminates PendingModal payloads.
type ModalKind string

const (
	// ModalSanction is the reason-collection modal shown before applying a
	// sanction.
	ModalSanction ModalKind = "sanction"
)

// PendingModal is the state behind a modal, recovered on submission.
type PendingModal struct {
	ID   string    `msgpack:"id"`
	Kind ModalKind `msgpack:"kind"`

	Sanction *PendingSanction `msgpack:"sanction,omitempty"`
}

// PendingSanction is a moderation action awaiting its reason.
type PendingSanction struct {
	InteractionID model.Snowflake `msgpack:"interaction_id"`
	Kind          string          `msgpack:"sanction_kind"`
	UserID        model.Snowflake `msgpack:"user_id"`
}

func (p *PendingModal) Key() string           { return ModalKey(p.ID) }
func (p *PendingModal) Expiry() time.Duration { return ModalExpiry }

// PendingCaptcha is an unsolved captcha challenge. A member has at most one
// per guild.
type PendingCaptcha struct {
	GuildID         model.Snowflake `msgpack:"guild_id"`
	MemberID        model.Snowflake `msgpack:"member_id"`
	Code            string          `msgpack:"code"`
	RegenerateCount uint8           `msgpack:"regenerate_count"`
	ExpiresAt       time.Time       `msgpack:"expires_at"`
}

func (p *PendingCaptcha) Key() string { return CaptchaKey(p.GuildID, p.MemberID) }

// Expiry outlives ExpiresAt by a margin so the watcher can still read the
// entry when it fires.
func (p *PendingCaptcha) Expiry() time.Duration {
	return time.Until(p.ExpiresAt) + captchaMargin
}

// ComponentKey returns the storage key of a pending component.
func ComponentKey(id string) string { return "pending:component:" + id }

// ModalKey returns the storage key of a pending modal.
func ModalKey(id string) string { return "pending:modal:" + id }

// CaptchaKey returns the storage key of a pending captcha.
func CaptchaKey(guildID, memberID model.Snowflake) string {
	return fmt.Sprintf("pending:captcha:%d:%d", guildID, memberID)
}

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz"

// NewCode generates a random 5-letter captcha code.
func NewCode() string {
	code := make([]byte, 5)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}

// Store persists pending state in the cache backend. Inserts are
// last-writer-wins; reads are snapshots.
type Store struct {
	cache *cache.Client
}

// NewStore creates a pending-state store over a cache client.
func NewStore(c *cache.Client) *Store {
	return &Store{cache: c}
}

// InsertComponent stores a component state, assigning it a fresh custom id
// if it has none, and returns the id.
func (s *Store) InsertComponent(ctx context.Context, component *PendingComponent) (string, error) {
	if component.ID == "" {
		component.ID = uuid.NewString()
	}
	return component.ID, s.cache.Set(ctx, component)
}

// GetComponent fetches a component state. It returns nil when the id is
// unknown or expired.
func (s *Store) GetComponent(ctx context.Context, id string) (*PendingComponent, error) {
	return cache.Get[PendingComponent](ctx, s.cache, ComponentKey(id))
}

// InsertModal stores a modal state, assigning it a fresh id if it has none,
// and returns the id.
func (s *Store) InsertModal(ctx context.Context, modal *PendingModal) (string, error) {
	if modal.ID == "" {
		modal.ID = uuid.NewString()
	}
	return modal.ID, s.cache.Set(ctx, modal)
}

// GetModal fetches a modal state. It returns nil when the id is unknown or
// expired.
func (s *Store) GetModal(ctx context.Context, id string) (*PendingModal, error) {
	return cache.Get[PendingModal](ctx, s.cache, ModalKey(id))
}

// InsertCaptcha stores a captcha challenge, replacing any previous challenge
// of the same member in the same guild.
func (s *Store) InsertCaptcha(ctx context.Context, captcha *PendingCaptcha) error {
	return s.cache.Set(ctx, captcha)
}

// GetCaptcha fetches the pending captcha of a member, or nil if none is
// pending.
func (s *Store) GetCaptcha(ctx context.Context, guildID, memberID model.Snowflake) (*PendingCaptcha, error) {
	return cache.Get[PendingCaptcha](ctx, s.cache, CaptchaKey(guildID, memberID))
}

// DeleteCaptcha removes the pending captcha of a member. Deleting before the
// deadline marks the challenge as solved.
func (s *Store) DeleteCaptcha(ctx context.Context, guildID, memberID model.Snowflake) error {
	return s.cache.Delete(ctx, CaptchaKey(guildID, memberID))
}

// RegenerateCaptcha replaces the captcha code, keeping the original
// deadline. It fails with ErrMaxRegenerate once the member used up its
// regenerations; the entry is left untouched in that case.
func (s *Store) RegenerateCaptcha(ctx context.Context, captcha *PendingCaptcha, code string) error {
	if captcha.RegenerateCount >= MaxRegenerate {
		return ErrMaxRegenerate
	}

	captcha.RegenerateCount++
	captcha.Code = code

	return s.cache.Set(ctx, captcha)
}

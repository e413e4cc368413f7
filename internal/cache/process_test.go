package cache

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

const testBotID model.Snowflake = 99

func testGuildEvent() *discordgo.GuildCreate {
	return &discordgo.GuildCreate{Guild: &discordgo.Guild{
		ID:      "1",
		Name:    "test guild",
		OwnerID: "10",
		Channels: []*discordgo.Channel{
			{ID: "20", GuildID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText, Position: 0},
			{ID: "21", GuildID: "1", Name: "staff", Type: discordgo.ChannelTypeGuildText, Position: 1},
		},
		Roles: []*discordgo.Role{
			{ID: "1", Name: "@everyone", Permissions: int64(model.PermissionViewChannel)},
			{ID: "2", Name: "moderator", Position: 1, Permissions: int64(model.PermissionKickMembers)},
		},
		Members: []*discordgo.Member{
			{GuildID: "1", User: &discordgo.User{ID: "99"}, Roles: []string{"2"}},
		},
	}}
}

func TestProcessGuildCreate(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	require.NotNil(t, guild)
	assert.Equal(t, "test guild", guild.Name)
	assert.Equal(t, model.Snowflake(10), guild.OwnerID)
	assert.ElementsMatch(t, []model.Snowflake{20, 21}, guild.Channels.Values())
	assert.ElementsMatch(t, []model.Snowflake{1, 2}, guild.Roles.Values())

	require.NotNil(t, guild.CurrentMember)
	assert.Equal(t, testBotID, guild.CurrentMember.ID)
	assert.Equal(t, []model.Snowflake{2}, guild.CurrentMember.Roles)

	channel, err := Get[model.Channel](ctx, client, model.ChannelKey(20))
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, "general", channel.Name)

	role, err := Get[model.Role](ctx, client, model.RoleKey(2))
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, model.PermissionKickMembers, role.Permissions)
}

func TestProcessGuildCreateSkipsMalformedMember(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	// A member with a malformed user id is skipped without aborting the
	// rest of the snapshot.
	event := testGuildEvent()
	event.Members = append([]*discordgo.Member{
		{GuildID: "1", User: &discordgo.User{ID: "not-a-snowflake"}},
	}, event.Members...)

	assert.NotPanics(t, func() {
		client.ProcessEvent(ctx, testBotID, event)
	})

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	require.NotNil(t, guild)
	require.NotNil(t, guild.CurrentMember)
	assert.Equal(t, testBotID, guild.CurrentMember.ID)
}

func TestProcessGuildCreateOverwritesExisting(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())

	updated := testGuildEvent()
	updated.Name = "renamed guild"
	updated.Channels = updated.Channels[:1]
	client.ProcessEvent(ctx, testBotID, updated)

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	require.NotNil(t, guild)
	assert.Equal(t, "renamed guild", guild.Name)
	assert.ElementsMatch(t, []model.Snowflake{20}, guild.Channels.Values())
}

func TestProcessGuildDeleteCascades(t *testing.T) {
	ctx := context.Background()
	client, kv := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())
	require.NotZero(t, kv.Len())

	client.ProcessEvent(ctx, testBotID, &discordgo.GuildDelete{
		Guild: &discordgo.Guild{ID: "1"},
	})

	// The guild and all of its channels and roles are gone.
	assert.Zero(t, kv.Len())
}

func TestProcessGuildUnavailable(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())
	client.ProcessEvent(ctx, testBotID, &discordgo.GuildDelete{
		Guild: &discordgo.Guild{ID: "1", Unavailable: true},
	})

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	require.NotNil(t, guild)
	assert.True(t, guild.Unavailable)

	channel, err := Get[model.Channel](ctx, client, model.ChannelKey(20))
	require.NoError(t, err)
	assert.Nil(t, channel)

	role, err := Get[model.Role](ctx, client, model.RoleKey(2))
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestProcessChannelCreateUncachedGuildDropped(t *testing.T) {
	ctx := context.Background()
	client, kv := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, &discordgo.ChannelCreate{
		Channel: &discordgo.Channel{ID: "20", GuildID: "404", Name: "orphan", Type: discordgo.ChannelTypeGuildText},
	})

	// No orphan channel key must be written.
	assert.Zero(t, kv.Len())
}

func TestProcessChannelLifecycle(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())

	client.ProcessEvent(ctx, testBotID, &discordgo.ChannelCreate{
		Channel: &discordgo.Channel{ID: "22", GuildID: "1", Name: "new", Type: discordgo.ChannelTypeGuildText, Position: 2},
	})

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	assert.True(t, guild.Channels.Contains(22))

	client.ProcessEvent(ctx, testBotID, &discordgo.ChannelUpdate{
		Channel: &discordgo.Channel{ID: "22", GuildID: "1", Name: "renamed", Type: discordgo.ChannelTypeGuildText, Position: 2},
	})

	channel, err := Get[model.Channel](ctx, client, model.ChannelKey(22))
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, "renamed", channel.Name)

	client.ProcessEvent(ctx, testBotID, &discordgo.ChannelDelete{
		Channel: &discordgo.Channel{ID: "22", GuildID: "1", Name: "renamed", Type: discordgo.ChannelTypeGuildText},
	})

	guild, err = Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	assert.False(t, guild.Channels.Contains(22))

	channel, err = Get[model.Channel](ctx, client, model.ChannelKey(22))
	require.NoError(t, err)
	assert.Nil(t, channel)
}

func TestProcessThreadCreate(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())
	client.ProcessEvent(ctx, testBotID, &discordgo.ThreadCreate{
		Channel: &discordgo.Channel{
			ID: "30", GuildID: "1", ParentID: "20", Name: "thread",
			Type: discordgo.ChannelTypeGuildPublicThread,
		},
	})

	thread, err := Get[model.Channel](ctx, client, model.ChannelKey(30))
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.True(t, thread.IsThread())
	assert.Equal(t, model.Snowflake(20), thread.ParentID)

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	assert.True(t, guild.Channels.Contains(30))
}

func TestProcessRoleLifecycle(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())

	client.ProcessEvent(ctx, testBotID, &discordgo.GuildRoleCreate{
		GuildRole: &discordgo.GuildRole{
			GuildID: "1",
			Role:    &discordgo.Role{ID: "3", Name: "member", Position: 0},
		},
	})

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	assert.True(t, guild.Roles.Contains(3))

	client.ProcessEvent(ctx, testBotID, &discordgo.GuildRoleUpdate{
		GuildRole: &discordgo.GuildRole{
			GuildID: "1",
			Role:    &discordgo.Role{ID: "3", Name: "verified", Position: 0},
		},
	})

	role, err := Get[model.Role](ctx, client, model.RoleKey(3))
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "verified", role.Name)

	client.ProcessEvent(ctx, testBotID, &discordgo.GuildRoleDelete{
		RoleID:  "3",
		GuildID: "1",
	})

	guild, err = Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	assert.False(t, guild.Roles.Contains(3))

	role, err = Get[model.Role](ctx, client, model.RoleKey(3))
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestProcessMemberUpdatesOnlyBot(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, testGuildEvent())

	// Another member joining leaves the bot membership untouched.
	client.ProcessEvent(ctx, testBotID, &discordgo.GuildMemberAdd{
		Member: &discordgo.Member{GuildID: "1", User: &discordgo.User{ID: "50"}, Roles: []string{"2"}},
	})

	guild, err := Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	require.NotNil(t, guild.CurrentMember)
	assert.Equal(t, []model.Snowflake{2}, guild.CurrentMember.Roles)

	// An update of the bot itself replaces the cached membership.
	client.ProcessEvent(ctx, testBotID, &discordgo.GuildMemberUpdate{
		Member: &discordgo.Member{GuildID: "1", User: &discordgo.User{ID: "99"}, Roles: []string{"2", "3"}},
	})

	guild, err = Get[model.Guild](ctx, client, model.GuildKey(1))
	require.NoError(t, err)
	require.NotNil(t, guild.CurrentMember)
	assert.Equal(t, []model.Snowflake{2, 3}, guild.CurrentMember.Roles)
}

func TestProcessUnknownEventIgnored(t *testing.T) {
	ctx := context.Background()
	client, kv := newTestClient(t)

	client.ProcessEvent(ctx, testBotID, &discordgo.MessageCreate{})
	assert.Zero(t, kv.Len())
}

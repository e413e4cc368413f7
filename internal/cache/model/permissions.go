package model

import (
	"math"

	"github.com/bwmarrin/discordgo"
)

// Permissions is a Discord permission bitset.
type Permissions int64

// Permission bits used by the bot. Values follow the Discord API and are
// shared with discordgo request payloads.
const (
	PermissionViewChannel           = Permissions(discordgo.PermissionViewChannel)
	PermissionSendMessages          = Permissions(discordgo.PermissionSendMessages)
	PermissionSendMessagesInThreads = Permissions(discordgo.PermissionSendMessagesInThreads)
	PermissionEmbedLinks            = Permissions(discordgo.PermissionEmbedLinks)
	PermissionUseExternalEmojis     = Permissions(discordgo.PermissionUseExternalEmojis)
	PermissionManageChannels        = Permissions(discordgo.PermissionManageChannels)
	PermissionManageRoles           = Permissions(discordgo.PermissionManageRoles)
	PermissionKickMembers           = Permissions(discordgo.PermissionKickMembers)
	PermissionAdministrator         = Permissions(discordgo.PermissionAdministrator)

	// PermissionsAll is the bitset granted to guild owners and
	// administrators.
	PermissionsAll = Permissions(math.MaxInt64)
)

// Contains checks whether every permission of p is present in the bitset.
func (b Permissions) Contains(p Permissions) bool {
	return b&p == p
}

// Missing returns the subset of p absent from the bitset.
func (b Permissions) Missing(p Permissions) Permissions {
	return p &^ b
}

package notification

// Definitions returns the declarative notification table for Communities.
// Keys follow EntityType:action[:fieldPath...][:audience]; the table is a
// plain slice so load order, and therefore duplicate detection, is stable.
//
// Interpolation context fields referenced below are supplied by the event
// producers: user, friend, inviter, requester, member, commenter, author,
// group, post, postIntro, commentIntro, link, path, host. Free-text excerpts
// (postIntro, commentIntro) use the escaped marker form; everything else is
// inserted raw, matching the trusted rendering contexts they land in.
func Definitions() []Definition {
	return []Definition{
		// ---------- friend requests ----------
		{
			Type:    "UserRelationship:create:relation",
			MuteKey: "friend-requests",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{user.name}}} sent you a Friend Request`,
				Body: "Hi {{{relation.name}}},\n\n" +
					"{{{user.name}}} sent you a friend request. You can view their profile and respond here: {{{host}}}{{{path}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{user.name}}} sent you a friend request.`,
				Path: `{{{path}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] You have a new friend request.`,
			},
		},
		{
			Type:    "UserRelationship:update:user",
			MuteKey: "friend-requests",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{friend.name}}} accepted your Friend Request`,
				Body: "Hi {{{user.name}}},\n\n" +
					"{{{friend.name}}} accepted your friend request. You can view their profile here: {{{host}}}{{{path}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{friend.name}}} accepted your friend request.`,
				Path: `{{{path}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] Your friend request was accepted.`,
			},
		},

		// ---------- posts and comments ----------
		{
			Type:    "Post:create:mention",
			MuteKey: "mentions",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{author.name}}} mentioned you in a post`,
				Body: "Hi {{{user.name}}},\n\n" +
					"{{{author.name}}} mentioned you in a post: \"{{postIntro}}...\"\n\n" +
					"Read it here: {{{host}}}{{{link}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{author.name}}} mentioned you in a post: "{{postIntro}}..."`,
				Path: `{{{link}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] You were mentioned in a post.`,
			},
		},
		{
			Type:    "PostComment:create:author",
			MuteKey: "comments",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{commenter.name}}} commented on your post`,
				Body: "Hi {{{author.name}}},\n\n" +
					"{{{commenter.name}}} commented on your post \"{{postIntro}}...\": \"{{commentIntro}}...\"\n\n" +
					"Read the full comment here: {{{host}}}{{{link}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{commenter.name}}} commented on your post "{{postIntro}}..."`,
				Path: `{{{link}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] Someone commented on your post.`,
			},
		},
		{
			// Subscribers already get the in-app feed entry; no push for these.
			Type:    "PostComment:create:subscriber",
			MuteKey: "comments",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{commenter.name}}} commented on a post you are subscribed to`,
				Body: "Hi {{{user.name}}},\n\n" +
					"{{{commenter.name}}} commented on a post you are subscribed to: \"{{commentIntro}}...\"\n\n" +
					"Read it here: {{{host}}}{{{link}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{commenter.name}}} commented on a post you are subscribed to.`,
				Path: `{{{link}}}`,
			},
		},
		{
			Type:    "PostComment:create:mention",
			MuteKey: "mentions",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{commenter.name}}} mentioned you in a comment`,
				Body: "Hi {{{user.name}}},\n\n" +
					"{{{commenter.name}}} mentioned you in a comment: \"{{commentIntro}}...\"\n\n" +
					"Read it here: {{{host}}}{{{link}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{commenter.name}}} mentioned you in a comment: "{{commentIntro}}..."`,
				Path: `{{{link}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] You were mentioned in a comment.`,
			},
		},

		// ---------- group membership ----------
		{
			Type:    "GroupMember:create:status:pending-invited:member",
			MuteKey: "group-invites",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{inviter.name}}} invited you to join group "{{{group.title}}}"`,
				Body: "Hi {{{user.name}}},\n\n" +
					"{{{inviter.name}}} invited you to join the group \"{{{group.title}}}\"!\n\n" +
					"You can view the group and respond to the invitation here: {{{host}}}group/{{{group.slug}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{inviter.name}}} invited you to join group "{{{group.title}}}"`,
				Path: `/group/{{{group.slug}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] You've been invited to join a group.`,
			},
		},
		{
			Type:    "GroupMember:create:status:pending-requested:moderator",
			MuteKey: "group-moderation",
			Email: &EmailTemplate{
				Subject: `[Communities] {{{requester.name}}} requested to join group "{{{group.title}}}"`,
				Body: "Hi {{{user.name}}},\n\n" +
					"{{{requester.name}}} requested to join the group \"{{{group.title}}}\".\n\n" +
					"You can review the request here: {{{host}}}group/{{{group.slug}}}/members\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `{{{requester.name}}} requested to join group "{{{group.title}}}"`,
				Path: `/group/{{{group.slug}}}/members`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] Someone requested to join your group.`,
			},
		},
		{
			Type:    "GroupMember:update:status:pending-requested-member:member",
			MuteKey: "group-membership",
			Email: &EmailTemplate{
				Subject: `[Communities] Your request to join group "{{{group.title}}}" was accepted`,
				Body: "Hi {{{user.name}}},\n\n" +
					"Your request to join the group \"{{{group.title}}}\" was accepted. Welcome!\n\n" +
					"Visit the group here: {{{host}}}group/{{{group.slug}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `Your request to join group "{{{group.title}}}" was accepted.`,
				Path: `/group/{{{group.slug}}}`,
			},
			Mobile: &MobileTemplate{
				Title: `[Communities] Your request to join a group was accepted.`,
			},
		},
		{
			Type:    "GroupMember:update:status:pending-invited-member:moderator",
			MuteKey: "group-moderation",
			Web: &WebTemplate{
				Text: `{{{member.name}}} accepted the invitation to join group "{{{group.title}}}"`,
				Path: `/group/{{{group.slug}}}/members`,
			},
		},
		{
			Type:    "GroupMember:update:role:member-moderator:member",
			MuteKey: "group-membership",
			Email: &EmailTemplate{
				Subject: `[Communities] You are now a moderator of group "{{{group.title}}}"`,
				Body: "Hi {{{user.name}}},\n\n" +
					"You have been made a moderator of the group \"{{{group.title}}}\".\n\n" +
					"Visit the group here: {{{host}}}group/{{{group.slug}}}\n\n" +
					"Cheers,\nThe Communities Team",
			},
			Web: &WebTemplate{
				Text: `You are now a moderator of group "{{{group.title}}}"`,
				Path: `/group/{{{group.slug}}}`,
			},
		},

		// ---------- moderation outcomes (in-app only) ----------
		{
			Type: "Post:moderation:update:status:rejected:author",
			Web: &WebTemplate{
				Text: `Your post was removed by the moderators of group "{{{group.title}}}".`,
				Path: `/group/{{{group.slug}}}`,
			},
		},
		{
			Type: "PostComment:moderation:update:status:rejected:author",
			Web: &WebTemplate{
				Text: `Your comment was removed by the moderators of group "{{{group.title}}}".`,
				Path: `{{{link}}}`,
			},
		},
	}
}

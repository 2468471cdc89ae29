// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package registry tracks live connections and the channels they belong to.

# Channels

	user_<id>           one user's private notifications
	role_<role>         everyone with a role
	election_<id>       election activity, milestones, lifecycle changes
	live_results_<id>   full tallies, admins only

Authorize decides whether a principal may join a channel. Join enforces it
together with the per-connection channel quota.

The registry holds no sockets. It maps connection IDs to channel sets and
back, and the broadcaster resolves channels through it.
*/
package registry

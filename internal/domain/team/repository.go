package team

import "context"

type Repository interface {
	GetTeam(ctx context.Context, teamID int64) (Team, error)
	GetTeamMembers(ctx context.Context, teamID int64) ([]Member, error)
}

// SnapshotCache holds loaded rosters between writes. Implementations must treat
// every error as a miss.
//
// Every Invalidate bumps the team's generation. Set stores the snapshot only
// if the generation still equals gen, so a load that read the store before a
// write cannot refill the cache after that write invalidated it.
type SnapshotCache interface {
	Get(ctx context.Context, teamID int64) (Team, []Member, bool)
	Generation(ctx context.Context, teamID int64) (uint64, bool)
	Set(ctx context.Context, teamID int64, gen uint64, t Team, members []Member)
	Invalidate(ctx context.Context, teamID int64)
}

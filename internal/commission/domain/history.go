package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ResolveActiveCoach returns the coach who was coaching the client when the
// payment was collected, scanning the assignment history in recorded order
// and taking the first covering interval. Clients without a matching interval
// fall back to their currently assigned coach. Returns zero when the client
// has no coach at all.
func ResolveActiveCoach(client Client, paidAt time.Time) snowflake.ID {
	for _, assignment := range client.CoachHistory {
		if assignment.Active(paidAt) {
			return assignment.CoachID
		}
	}
	return client.AssignedCoachID
}

// Package audit defines the audit events the console emits over the
// message broker.  Every mutating administrator action publishes one event
// so that downstream consumers can keep a trail without being in the
// request path.
package audit

// Actions recorded by the console.
const (
	ActionLogin        = "session.login"
	ActionLogout       = "session.logout"
	ActionMovieCreated = "movie.created"
	ActionMovieUpdated = "movie.updated"
	ActionMovieDeleted = "movie.deleted"
	ActionMovieToggled = "movie.status_toggled"
	ActionUserUpdated  = "user.updated"
	ActionUserDeleted  = "user.deleted"
)

// Event is the payload published to the console.audit queue.  It carries
// enough to reconstruct who did what to which record, without requiring a
// lookup against the upstream API.
type Event struct {
	Action      string `json:"action"`       // one of the Action constants
	ActorID     string `json:"actor_id"`     // administrator who performed the action
	ActorEmail  string `json:"actor_email"`  // their login email at the time
	TargetID    string `json:"target_id"`    // affected movie/user id, empty for session events
	TargetLabel string `json:"target_label"` // human-readable label, e.g. movie title
	OccurredAt  string `json:"occurred_at"`  // RFC3339 UTC timestamp
}

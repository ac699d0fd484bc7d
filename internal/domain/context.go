package domain

// ContextBundle is the assembled input handed to the AI model for one chat
// turn. Profile is nil when the user has no profile yet; History is
// chronological; Summaries are newest first. The bundle always carries the
// incoming message, so a brand-new user still gets a usable turn.
type ContextBundle struct {
	Profile   *Profile
	History   []Message
	Summaries []Summary
	Incoming  string
}

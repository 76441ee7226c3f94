package planning

import "errors"

var (
	// ErrInvalidBriefing wraps the validation errors of a rejected briefing.
	ErrInvalidBriefing = errors.New("invalid briefing")
	// ErrBudgetInsufficientForProduction is returned when the video share of
	// the budget cannot cover the cost of producing the spot.
	ErrBudgetInsufficientForProduction = errors.New("video budget insufficient for production")
	// ErrUnknownObjective is returned when no mix strategy is configured for
	// the briefing objective.
	ErrUnknownObjective = errors.New("no mix strategy for objective")
)

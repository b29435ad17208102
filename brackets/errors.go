package brackets

import "errors"

// Ошибки движка сетки. Сервисный слой переэкспортирует их для маппинга в HTTP.
var (
	ErrInvalidBracketInput   = errors.New("invalid bracket input")
	ErrInvalidResult         = errors.New("invalid match result")
	ErrAlreadyCompleted      = errors.New("match already completed")
	ErrSuccessorMatchFull    = errors.New("successor match already has two participants")
	ErrTournamentNotFinished = errors.New("tournament final has no recorded winner")
	ErrMalformedBracket      = errors.New("bracket does not have exactly one final match")
)

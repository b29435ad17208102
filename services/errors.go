package services

import (
	"errors"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/repositories"
)

// Ошибки движка сетки. Определены в brackets и repositories, здесь собраны для
// маппинга в HTTP.
var (
	ErrInvalidBracketInput   = brackets.ErrInvalidBracketInput
	ErrInvalidResult         = brackets.ErrInvalidResult
	ErrAlreadyCompleted      = brackets.ErrAlreadyCompleted
	ErrSuccessorMatchFull    = brackets.ErrSuccessorMatchFull
	ErrTournamentNotFinished = brackets.ErrTournamentNotFinished
	ErrMalformedBracket      = brackets.ErrMalformedBracket

	ErrMatchNotFound      = repositories.ErrMatchNotFound
	ErrTournamentNotFound = repositories.ErrTournamentNotFound
)

var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed           = errors.New("validation failed")
	ErrTournamentNameRequired     = errors.New("tournament name is required")
	ErrTournamentInvalidDateRange = errors.New("tournament end date must not be before start date")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
	ErrBracketIntegrity           = errors.New("generated bracket failed the integrity check")

	// Ошибки состояния турнира
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentClosed                  = errors.New("tournament is closed for results")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)

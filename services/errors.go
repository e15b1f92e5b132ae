package services

import "errors"

// Общие ошибки сервисного слоя, используемые в маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrInvalidWinsRequired     = errors.New("wins required must be at least 1")
	ErrTournamentNotPending    = errors.New("tournament has already started or ended")
	ErrTournamentNotStarted    = errors.New("tournament is not running")
	ErrNotEnoughPlayers        = errors.New("at least two enrolled players are required to start")
	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated for this tournament")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Ошибки регистрации и участия
	ErrPlayerTagRequired  = errors.New("player tag is required")
	ErrPlayerTagTaken     = errors.New("player tag is already registered by another account")
	ErrAlreadyRegistered  = errors.New("discord account already has a registered player")
	ErrAlreadyEnrolled    = errors.New("player is already enrolled in this tournament")
	ErrNotEnrolled        = errors.New("player is not enrolled in this tournament")
	ErrEnrollmentClosed   = errors.New("enrollment is closed: tournament is not pending")
	ErrPlayerInActivePlay = errors.New("player participates in a running tournament")

	// Ошибки матчей и проверки результатов
	ErrNotInMatch               = errors.New("player has no match in this tournament")
	ErrMatchAlreadyDecided      = errors.New("match winner has already been recorded")
	ErrAlreadyReady             = errors.New("player is already marked ready")
	ErrOpponentPending          = errors.New("opponent has not been determined yet")
	ErrEvidenceInsufficient     = errors.New("not enough eligible battles in the log to decide the match")
	ErrAdjudicationInconclusive = errors.New("battle log does not contain a decisive result yet")

	// Внешний игровой API
	ErrGameTagNotFound     = errors.New("player tag not found in the game API")
	ErrGameAPIUnavailable  = errors.New("game API is unavailable, try again later")
	ErrGameAPIUnauthorized = errors.New("game API rejected the configured token")

	// Не найдено
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrGuildConfigNotFound = errors.New("guild config not found")

	// Конфликты
	ErrTournamentNameConflict = errors.New("tournament name already exists in this guild")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
)

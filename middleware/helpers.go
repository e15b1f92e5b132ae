package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Имена claims в токене маршала.
const (
	jwtClaimMarshalID = "marshal_id"
	jwtClaimGuildID   = "guild_id"
)

func GetMarshalIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(marshalContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("marshal claims not found in context or invalid type")
	}

	idClaim, ok := claims[jwtClaimMarshalID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimMarshalID)
	}

	// JSON-числа приходят как float64.
	idFloat, ok := idClaim.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number, got %T", jwtClaimMarshalID, idClaim)
	}
	if idFloat != float64(int(idFloat)) || int(idFloat) <= 0 {
		return 0, fmt.Errorf("invalid marshal ID value in '%s' claim: %f", jwtClaimMarshalID, idFloat)
	}
	return int(idFloat), nil
}

func GetGuildIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(marshalContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("marshal claims not found in context or invalid type")
	}

	guildClaim, ok := claims[jwtClaimGuildID]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimGuildID)
	}

	guildID, ok := guildClaim.(string)
	if !ok || guildID == "" {
		return "", fmt.Errorf("invalid '%s' claim in token", jwtClaimGuildID)
	}
	return guildID, nil
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/tourney/models"
	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims, которые выдаёт провайдер идентификации.
const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

var ErrNoClaims = errors.New("user claims not found in context or invalid type")

// GetActorFromContext собирает models.Actor из claims текущего запроса.
// Роль необязательна: без неё пользователь считается обычным.
func GetActorFromContext(ctx context.Context) (models.Actor, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return models.Actor{}, ErrNoClaims
	}

	id, err := userIDFromClaims(claims)
	if err != nil {
		return models.Actor{}, err
	}
	role, err := roleFromClaims(claims)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{ID: id, Role: role}, nil
}

func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	switch v := userIDClaim.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("empty '%s' claim in token", jwtClaimUserID)
		}
		return v, nil
	case float64:
		// JSON числа приходят как float64
		if v != float64(int64(v)) || v <= 0 {
			return "", fmt.Errorf("invalid user ID value in '%s' claim: %v", jwtClaimUserID, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", jwtClaimUserID, userIDClaim)
	}
}

func roleFromClaims(claims jwt.MapClaims) (models.UserRole, error) {
	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return models.RoleUser, nil
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	switch role := models.UserRole(roleStr); role {
	case models.RoleAdmin, models.RoleUser:
		return role, nil
	case "":
		return models.RoleUser, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}

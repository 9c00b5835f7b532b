package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"teamaccess/internal/app/dto"
	"teamaccess/internal/domain"
)

const actorKey = "actor_id"

type TokenParser interface {
	Parse(token string) (int64, error)
}

// RequireActor rejects requests without a valid bearer token and stores the
// actor id on the context.
func RequireActor(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthenticated(c, "authentication required")
			return
		}
		actorID, err := tokens.Parse(token)
		if err != nil {
			unauthenticated(c, "authentication failed")
			return
		}
		c.Set(actorKey, actorID)
		c.Next()
	}
}

func ActorID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: dto.Error{
			Code:    string(domain.ErrorCodeUnauthenticated),
			Message: msg,
		},
	})
}

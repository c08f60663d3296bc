package middleware

import "github.com/gin-gonic/gin"

const actorIDKey = contextKey("actorID")

// defaultActor is recorded in audit fields when the caller sends no actor header.
const defaultActor = "system"

// ActorMiddleware copies the X-Actor-ID header into the context for audit
// fields. Authentication itself lives outside this service.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-Actor-ID")
		if actor == "" {
			actor = defaultActor
		}
		c.Set(string(actorIDKey), actor)
		c.Next()
	}
}

// GetActorFromContext retrieves the acting user ID for audit fields.
func GetActorFromContext(c *gin.Context) string {
	actorVal, exists := c.Get(string(actorIDKey))
	if !exists {
		return defaultActor
	}
	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return defaultActor
	}
	return actor
}

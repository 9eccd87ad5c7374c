package contextkeys

type contextKey string

// DBContextKey stores the request-scoped *gorm.DB (pool or transaction).
const DBContextKey = contextKey("db")

// Keys set by the auth middleware on gin.Context.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

package rbac

// Role names. Keep these stable; they are part of the auth contract.
const (
	// RoleOperator can place calls and inspect its own call state.
	RoleOperator = "operator"
	// RoleAdmin can additionally manage prompts and read reports.
	RoleAdmin = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

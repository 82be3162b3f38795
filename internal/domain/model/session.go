package model

type Role string

const (
	RoleAnonymous Role = ""
	RoleBuyer     Role = "BUYER"
	RoleSeller    Role = "SELLER"
	RoleAdmin     Role = "ADMIN"
)

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// SessionIdentity 最小化的登入身分，只用來判斷是否可執行買家操作
type SessionIdentity struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	Token  string `json:"token"`
}

func AnonymousIdentity() SessionIdentity {
	return SessionIdentity{}
}

func (s SessionIdentity) IsAuthenticated() bool {
	return s.UserID != "" && s.Token != ""
}

func (s SessionIdentity) IsBuyer() bool {
	return s.IsAuthenticated() && s.Role == RoleBuyer
}

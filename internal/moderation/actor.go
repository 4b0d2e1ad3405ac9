package moderation

type Role string

const (
	RoleNeighbor Role = "neighbor"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleNeighbor, RoleMerchant, RoleAdmin:
		return true
	}
	return false
}

// Actor 每个请求解析一次，显式传给 service
type Actor struct {
	ID          uint64  `json:"id"`
	Role        Role    `json:"role"`
	CommunityID *uint64 `json:"community_id,omitempty"`
}

// Anonymous 未登录访问者
var Anonymous *Actor

func (a *Actor) Authenticated() bool {
	return a != nil && a.ID != 0
}

// IsAdmin 管理员是全局的，不区分社区
func (a *Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}

func (a *Actor) Owns(r Record) bool {
	return a.Authenticated() && r != nil && r.Owner() == a.ID
}

// PromotedRole 提交商家后的角色：只有 neighbor 会被提升为 merchant
func PromotedRole(current Role) (Role, bool) {
	if current == RoleNeighbor {
		return RoleMerchant, true
	}
	return current, false
}

package moderation

// 所有检查都只返回错误，调用方按 授权 -> 校验 -> 写入 的顺序使用

// CanSubmit 登录即可提交，社区由路由决定
func CanSubmit(actor *Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin 警报、公共服务、分类等只有管理员能写
func RequireAdmin(actor *Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func CanModerate(actor *Actor) error {
	return RequireAdmin(actor)
}

// CanEdit 商家和帖子都只允许作者本人编辑，管理员也不能代改
func CanEdit(actor *Actor, r Record) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	if !actor.Owns(r) {
		return ErrForbidden
	}
	return nil
}

// CanDelete 作者或管理员，任何状态都可以删
func CanDelete(actor *Actor, r Record) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	if actor.IsAdmin() || actor.Owns(r) {
		return nil
	}
	return ErrForbidden
}

// Approve 返回目标状态；权限先于状态检查
func Approve(actor *Actor, r Record) (Status, error) {
	return decide(actor, r, StatusApproved)
}

func Reject(actor *Actor, r Record) (Status, error) {
	return decide(actor, r, StatusRejected)
}

func decide(actor *Actor, r Record, to Status) (Status, error) {
	if err := CanModerate(actor); err != nil {
		return "", err
	}
	if err := Transition(r.ModerationStatus(), to); err != nil {
		return "", err
	}
	return to, nil
}

// IsVisible 公开可见需要 approved（商家还要 is_active），作者和管理员总是可见
func IsVisible(r Record, viewer *Actor) bool {
	if r == nil {
		return false
	}
	if viewer.IsAdmin() || viewer.Owns(r) {
		return true
	}
	if r.ModerationStatus() != StatusApproved {
		return false
	}
	if ar, ok := r.(activeRecord); ok {
		return ar.Active()
	}
	return true
}

package moderation

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal approved 和 rejected 不再接受审核流转
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Kind string

const (
	KindBusiness Kind = "business"
	KindPost     Kind = "post"
)

// Record 受审核的内容：商家或社区帖子
type Record interface {
	Kind() Kind
	Tenant() uint64
	Owner() uint64
	ModerationStatus() Status
}

// activeRecord 商家额外有 is_active 开关
type activeRecord interface {
	Active() bool
}

// Transition 唯一合法的流转：pending -> approved | rejected
func Transition(from, to Status) error {
	if from != StatusPending {
		return ErrIllegalTransition
	}
	switch to {
	case StatusApproved, StatusRejected:
		return nil
	}
	return ErrIllegalTransition
}

package validation

type SignupInput struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,colphone"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	CommunityID uint64 `json:"community_id" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type OTPSendInput struct {
	Phone string `json:"phone" validate:"required,colphone"`
}

type OTPVerifyInput struct {
	Phone     string `json:"phone" validate:"required,colphone"`
	OTP       string `json:"otp" validate:"required,len=6,numeric"`
	RequestID string `json:"request_id" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Decode 通用的解析 + 校验
func Decode[T any](raw []byte) (*T, error) {
	var in T
	if verr := decodeJSON(raw, &in); verr.Err() != nil {
		return nil, verr
	}
	if verr := Struct(&in, ""); verr.Err() != nil {
		return nil, verr
	}
	return &in, nil
}

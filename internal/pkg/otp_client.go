package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrOTPProvider = errors.New("otp provider failure")

type OTPDevConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Expiry  int // 秒
	Length  int
}

type otpSendReq struct {
	Phone   string `json:"phone"`
	Channel string `json:"channel"`
	Expiry  int    `json:"expiry"`
	Length  int    `json:"length"`
}

type otpSendResp struct {
	RequestID string `json:"request_id"`
}

type otpCheckReq struct {
	RequestID string `json:"request_id"`
	OTP       string `json:"otp"`
}

type otpCheckResp struct {
	Valid bool `json:"valid"`
}

// OTPDevClient otp.dev 的 WhatsApp 验证码接口，不做自动重试
type OTPDevClient struct {
	httpClient *resty.Client
	breaker    *gobreaker.CircuitBreaker
	cfg        OTPDevConfig
	logger     *zap.Logger
}

func NewOTPDevClient(cfg OTPDevConfig, logger *zap.Logger) *OTPDevClient {
	if cfg.Expiry == 0 {
		cfg.Expiry = 300
	}
	if cfg.Length == 0 {
		cfg.Length = 6
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "otp.dev",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &OTPDevClient{httpClient: client, breaker: breaker, cfg: cfg, logger: logger}
}

// Send 发送验证码，返回供应商的 request_id
func (c *OTPDevClient) Send(ctx context.Context, phone string) (string, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var result otpSendResp
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(otpSendReq{Phone: phone, Channel: "whatsapp", Expiry: c.cfg.Expiry, Length: c.cfg.Length}).
			SetResult(&result).
			Post("/api/verify")
		if err != nil {
			return nil, fmt.Errorf("%w: send: %v", ErrOTPProvider, err)
		}
		if resp.IsError() || result.RequestID == "" {
			return nil, fmt.Errorf("%w: send status %d", ErrOTPProvider, resp.StatusCode())
		}
		return result.RequestID, nil
	})
	if err != nil {
		c.logger.Error("otp send failed", zap.String("phone", maskPhone(phone)), zap.Error(err))
		return "", err
	}
	return out.(string), nil
}

// Check 4xx 或 valid=false 视为验证码错误，不计入熔断
func (c *OTPDevClient) Check(ctx context.Context, requestID, code string) (bool, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var result otpCheckResp
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(otpCheckReq{RequestID: requestID, OTP: code}).
			SetResult(&result).
			Post("/api/verify/check")
		if err != nil {
			return nil, fmt.Errorf("%w: check: %v", ErrOTPProvider, err)
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: check status %d", ErrOTPProvider, resp.StatusCode())
		}
		if resp.IsError() {
			return false, nil
		}
		return result.Valid, nil
	})
	if err != nil {
		c.logger.Error("otp check failed", zap.String("request_id", requestID), zap.Error(err))
		return false, err
	}
	return out.(bool), nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return "****" + phone[len(phone)-4:]
}

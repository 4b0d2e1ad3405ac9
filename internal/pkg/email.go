package pkg

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string // 发件邮箱
	Password string
	From     string // 显示的发件人
}

// Mailer 发送 HTML 邮件
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewMailer(cfg SMTPConfig) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &Mailer{cfg: cfg, dialer: d}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// DecisionSubject 审核结果通知的标题
func DecisionSubject(approved bool) string {
	if approved {
		return "Tu publicacion en BarrioRed fue aprobada"
	}
	return "Tu publicacion en BarrioRed no fue aprobada"
}

// DecisionHTML 审核结果通知正文
func DecisionHTML(name, kindLabel, title string, approved bool) string {
	verdict := `<b style="color:#15803d;">aprobada</b> y ya es visible para tus vecinos`
	if !approved {
		verdict = `<b style="color:#b91c1c;">rechazada</b> por el equipo de moderacion`
	}
	if name == "" {
		name = "vecino"
	}
	return fmt.Sprintf(`<p>Hola %s,</p><p>Tu %s <b>%s</b> fue %s.</p><p>Gracias por hacer parte de BarrioRed.</p>`,
		html.EscapeString(name), kindLabel, html.EscapeString(title), verdict)
}

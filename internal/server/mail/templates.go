package mail

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/agencyhub/internal/logging"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var baseTemplate = template.Must(template.ParseFS(templateFS, "templates/base.gohtml"))

// Config holds the application-level settings used when rendering emails.
type Config struct {
	AppName    string
	AppHost    string
	AdminEmail string
}

// Branding overrides the name/logo shown in a rendered email. Zero values
// fall back to the application defaults.
type Branding struct {
	AgencyName string
	AgencyLogo string
}

// TemplatePreview is one rendered sample for the admin preview page.
type TemplatePreview struct {
	Name   string `json:"name"`
	Params string `json:"params"`
	HTML   string `json:"html"`
}

// Service renders email templates and hands them to a Sender.
type Service struct {
	cfg    Config
	sender Sender
	logger logging.Logger
}

// NewService constructs a mail Service.
func NewService(cfg Config, sender Sender, logger logging.Logger) *Service {
	return &Service{cfg: cfg, sender: sender, logger: logger.With("module", "mail")}
}

type baseContext struct {
	AgencyName string
	AgencyLogo string
	Content    template.HTML
}

func (s *Service) render(content template.HTML, b Branding) (string, error) {
	ctx := baseContext{
		AgencyName: b.AgencyName,
		AgencyLogo: b.AgencyLogo,
		Content:    content,
	}
	if ctx.AgencyName == "" {
		ctx.AgencyName = s.cfg.AppName
	}

	var sb strings.Builder
	if err := baseTemplate.Execute(&sb, ctx); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return sb.String(), nil
}

// ForgotPasswordHTML renders the password-reset email for the given ticket
// token.
func (s *Service) ForgotPasswordHTML(code string, b Branding) (string, error) {
	resetLink := s.cfg.AppHost + "/account/password-reset?token=" + url.QueryEscape(code)

	content := fmt.Sprintf(`Hi,<br><br>
We received a request to reset your password for your account. If you did not initiate this request, please ignore this email.<br><br>
To reset, click on the link:<br><br>
<a href="%[1]s">%[1]s</a><br><br>
<p>(This link will only work for a short time)</p>`, resetLink)

	return s.render(template.HTML(content), b)
}

// WelcomeHTML renders the post-registration welcome email.
func (s *Service) WelcomeHTML(b Branding) (string, error) {
	name := b.AgencyName
	if name == "" {
		name = s.cfg.AppName
	}

	content := fmt.Sprintf(`Hi,<br/>
<p>Welcome to <strong>%s</strong>.</p>
<p>Get started now: <a href="%s">%s</a>.</p>`,
		template.HTMLEscapeString(name), s.cfg.AppHost, template.HTMLEscapeString(name))

	return s.render(template.HTML(content), b)
}

// AdminNotificationHTML renders the internal admin notification email.
func (s *Service) AdminNotificationHTML(message string, b Branding) (string, error) {
	content := fmt.Sprintf(`<h2>Admin Notification</h2>
<p>%s</p>`, template.HTMLEscapeString(message))

	return s.render(template.HTML(content), b)
}

// SendForgotPassword delivers a reset email to the requested address.
func (s *Service) SendForgotPassword(ctx context.Context, to string, code string) error {
	html, err := s.ForgotPasswordHTML(code, Branding{})
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, to, "Password Reset - "+s.cfg.AppName, html)
}

// SendWelcome delivers the welcome email to a freshly registered user.
func (s *Service) SendWelcome(ctx context.Context, to string) error {
	html, err := s.WelcomeHTML(Branding{})
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, to, "Welcome to "+s.cfg.AppName, html)
}

// SendAdminNotification delivers an internal notification to the configured
// admin address. A missing admin address is a no-op.
func (s *Service) SendAdminNotification(ctx context.Context, subject string, message string) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	html, err := s.AdminNotificationHTML(message, Branding{})
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, s.cfg.AdminEmail, subject, html)
}

// sampleResetCode feeds the admin preview page. Not a real ticket.
const sampleResetCode = "jfdksufgdug3232k32nfds"

// Previews renders every template with sample parameters for the admin
// preview page. Branding comes from the request so admins can check how an
// agency-customized email would look.
func (s *Service) Previews(b Branding) ([]TemplatePreview, error) {
	forgotParams, err := json.Marshal(map[string]string{"code": sampleResetCode})
	if err != nil {
		return nil, err
	}

	forgotHTML, err := s.ForgotPasswordHTML(sampleResetCode, b)
	if err != nil {
		return nil, err
	}
	welcomeHTML, err := s.WelcomeHTML(b)
	if err != nil {
		return nil, err
	}

	return []TemplatePreview{
		{Name: "Forgot password", Params: string(forgotParams), HTML: forgotHTML},
		{Name: "User welcome", Params: "{}", HTML: welcomeHTML},
	}, nil
}

package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

// NoticeTemplate is the renderable content of one notice type.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

const welcomeHtml = `<div style="font-family:sans-serif">
<h2>Welcome, {{.Name}}!</h2>
<p>Your account has been created with email: <b>{{.Email}}</b>.</p>
<p>Please verify your email address to unlock all features.</p>
</div>`

const verifyOtpHtml = `<div style="font-family:sans-serif">
<p>Verification code for <b>{{.Email}}</b>:</p>
<h1 style="letter-spacing:0.3em">{{.OTP}}</h1>
<p>This code expires in {{.ExpiryHours}} hours.</p>
</div>`

const resetOtpHtml = `<div style="font-family:sans-serif">
<p>Password reset code for <b>{{.Email}}</b>:</p>
<h1 style="letter-spacing:0.3em">{{.OTP}}</h1>
<p>This code expires in {{.ExpiryMinutes}} minutes. If you did not request a reset, ignore this email.</p>
</div>`

var noticeTemplates = map[NoticeType]NoticeTemplate{
	NoticeWelcome: {
		Subject: "Welcome to Raghav Verse",
		Text:    "Welcome, {{.Name}}! Your account has been created with email: {{.Email}}.",
		Html:    welcomeHtml,
	},
	NoticeVerifyOTP: {
		Subject: "Account Verification OTP",
		Text:    "Your OTP for verifying your account is {{.OTP}}. It will expire in {{.ExpiryHours}} hours.",
		Html:    verifyOtpHtml,
	},
	NoticeResetOTP: {
		Subject: "Password Reset OTP",
		Text:    "Your OTP for resetting your password is {{.OTP}}. It will expire in {{.ExpiryMinutes}} minutes.",
		Html:    resetOtpHtml,
	},
}

// LookupTemplate returns the template registered for a notice type.
func LookupTemplate(notice NoticeType) (NoticeTemplate, error) {
	tmpl, ok := noticeTemplates[notice]
	if !ok {
		return NoticeTemplate{}, fmt.Errorf("no template registered for notice type: %s", notice)
	}
	return tmpl, nil
}

func renderTemplate(name, text string, data map[string]string) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

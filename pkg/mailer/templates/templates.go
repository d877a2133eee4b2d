package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Token delivery emails. Each template receives Name, Link, Token and
// ExpiresIn from the job data.

var subjects = map[string]string{
	"confirm_email":  "Confirm your email address",
	"reset_password": "Reset your password",
	"change_email":   "Confirm your new email address",
}

var bodies = map[string]string{
	"confirm_email": `
<p>Hi {{.Name}},</p>
<p>Confirm your email address by following the link below. The link expires in {{.ExpiresIn}}.</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>If you did not create this account, you can ignore this message.</p>`,
	"reset_password": `
<p>Hi {{.Name}},</p>
<p>A password reset was requested for your account. The link expires in {{.ExpiresIn}}.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request a reset, you can ignore this message.</p>`,
	"change_email": `
<p>Hi {{.Name}},</p>
<p>Confirm that this is your new email address. The link expires in {{.ExpiresIn}}.</p>
<p><a href="{{.Link}}">Confirm new email</a></p>
<p>If you did not request this change, you can ignore this message.</p>`,
}

// Render returns the subject and HTML body for a known template name.
func Render(name string, data map[string]any) (subject, html string, err error) {
	body, ok := bodies[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[name], buf.String(), nil
}

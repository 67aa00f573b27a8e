package templates

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// RenderInvitation generates branded HTML for an invitation email. The custom
// message is plain text from the inviter; it gets HTML-escaped and has newlines
// converted to <br> tags before rendering.
func RenderInvitation(firstName, acceptLink, customMessage string, expiresAt time.Time) string {
	greeting := "Hello,"
	if firstName != "" {
		greeting = fmt.Sprintf("Hello %s,", html.EscapeString(firstName))
	}

	messageBlock := ""
	if customMessage != "" {
		escaped := html.EscapeString(customMessage)
		messageBlock = fmt.Sprintf(`<blockquote style="border-left: 3px solid #2f6f4f; margin: 20px 0; padding: 10px 20px; color: #4b5563;">%s</blockquote>`,
			strings.ReplaceAll(escaped, "\n", "<br>"))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>You're invited to KeyHaven</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f6f5; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #2f6f4f 0%%, #1f4d37 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .button { display: inline-block; background-color: #2f6f4f; color: #ffffff; padding: 14px 32px; border-radius: 6px; text-decoration: none; font-weight: 600; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
    .footer a { color: #2f6f4f; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>You're invited to KeyHaven</h1>
    </div>
    <div class="content">
      <p>%s</p>
      <p>You've been invited to join KeyHaven. Click the button below to accept your invitation and set up your account.</p>
      %s
      <p style="text-align: center; margin: 30px 0;"><a class="button" href="%s">Accept Invitation</a></p>
      <p style="color: #6b7280; font-size: 13px;">This invitation expires on %s. If the button doesn't work, copy this link into your browser:<br>%s</p>
    </div>
    <div class="footer">
      <p>&copy; KeyHaven | <a href="https://www.keyhaven.com">keyhaven.com</a></p>
      <p><a href="https://www.keyhaven.com/contact-us">Contact Support</a></p>
    </div>
  </div>
</body>
</html>`, greeting, messageBlock, acceptLink, expiresAt.Format("January 2, 2006"), acceptLink)
}

// RenderInviteCode generates branded HTML carrying a short invite code for
// manual entry.
func RenderInviteCode(code string, expiresAt time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <title>Your KeyHaven invite code</title>
</head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f6f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 40px 30px;">
    <h1 style="color: #1f4d37; font-size: 22px;">Your KeyHaven invite code</h1>
    <p style="color: #1f2937;">Enter this code on the KeyHaven sign-up page to accept your invitation:</p>
    <p style="text-align: center; font-size: 32px; letter-spacing: 6px; font-weight: 700; color: #2f6f4f; margin: 30px 0;">%s</p>
    <p style="color: #6b7280; font-size: 13px;">This code expires on %s.</p>
  </div>
</body>
</html>`, html.EscapeString(code), expiresAt.Format("January 2, 2006"))
}

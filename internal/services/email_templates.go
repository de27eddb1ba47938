package services

import (
	"fmt"
	"time"
)

const verificationEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Verification Code</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border-radius: 8px; overflow: hidden; border: 1px solid #e0e0e0; }
  .header { background-color: #1a3c5e; color: #fff; padding: 18px 24px; }
  .header h1 { margin: 0; font-size: 20px; }
  .content { padding: 24px; color: #333; }
  .code { font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; padding: 16px; background: #f0f4f8; border-radius: 6px; margin: 20px 0; }
  .footer { padding: 16px 24px; font-size: 12px; color: #999; }
</style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>%s</h1></div>
    <div class="content">
      <p>Use this code to verify your account:</p>
      <div class="code">%s</div>
      <p>The code expires in %d minutes. If you did not request it, you can ignore this email.</p>
    </div>
    <div class="footer">This is an automated message, please do not reply.</div>
  </div>
</body>
</html>`

func verificationEmailBodies(orgName, code string, ttl time.Duration) (plain, html string) {
	minutes := int(ttl.Minutes())
	plain = fmt.Sprintf(
		"Your %s verification code is %s. It expires in %d minutes.",
		orgName, code, minutes,
	)
	html = fmt.Sprintf(verificationEmailHTML, orgName, code, minutes)
	return plain, html
}

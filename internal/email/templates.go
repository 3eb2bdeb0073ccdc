package email

import "fmt"

// renderWelcome produces the subject and HTML body for the signup
// welcome message.
func renderWelcome(name string) (subject, html string) {
	if name == "" {
		name = "there"
	}
	subject = "Welcome to Inkpad!"
	html = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to Inkpad!</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
        <h1 style="color: white; margin: 0; font-size: 24px;">Inkpad</h1>
    </div>
    <div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none; border-radius: 0 0 10px 10px;">
        <h2 style="color: #333; margin-top: 0;">Welcome, %s!</h2>
        <p>Thanks for joining Inkpad. Your notebook already has a welcome note waiting for you.</p>
        <p>With Inkpad you can:</p>
        <ul style="color: #555;">
            <li>Write notes in markdown with automatic saving</li>
            <li>Share any note through its public link</li>
            <li>Polish your drafts with AI suggestions</li>
        </ul>
        <p style="color: #666; font-size: 14px;">If you have any questions, just reply to this email.</p>
        <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated message from Inkpad.</p>
    </div>
</body>
</html>`, name)
	return subject, html
}

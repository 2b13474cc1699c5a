package mail

import "fmt"

// verificationBody renders the signup verification email. The expiry
// window is passed in because registration and resend use different
// windows.
func verificationBody(siteName, firstName, code, window string) (text, html string) {
	text = fmt.Sprintf("Hello %s,\n\nYour %s verification code is: %s\n\nThis code expires in %s. If you did not create an account, ignore this email.\n",
		firstName, siteName, code, window)

	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #1679c5; padding: 20px; text-align: center; color: white;">
    <h1>%s Account Verification</h1>
  </div>
  <div style="padding: 20px; border: 1px solid #e0e0e0; border-top: none;">
    <p>Hello %s,</p>
    <p>Thank you for signing up for %s! Please use the following code to verify your email address:</p>
    <div style="text-align: center; margin: 30px 0;">
      <div style="font-size: 32px; font-weight: bold; letter-spacing: 8px; padding: 20px; background-color: #f5f5f5; border-radius: 8px;">%s</div>
    </div>
    <p>This verification code will expire in %s.</p>
    <p>If you did not create an account, please ignore this email.</p>
    <p>Best regards,<br>The %s Team</p>
  </div>
</div>`, siteName, firstName, siteName, code, window, siteName)
	return text, html
}

// resetBody renders the password reset email.
func resetBody(siteName, firstName, code string) (text, html string) {
	text = fmt.Sprintf("Hello %s,\n\nYour %s password reset code is: %s\n\nThis code expires in 15 minutes. Never share this code with anyone.\n",
		firstName, siteName, code)

	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 20px; border-radius: 8px; text-align: center;">
  <div style="font-size: 36px; font-weight: 700; color: #7C3AED;">%s</div>
  <div style="font-size: 24px; font-weight: bold; color: #1679c5;">Password Reset Request</div>
  <p>Hello <strong>%s</strong>,</p>
  <p>We received a request to reset your password. Use the following code to complete the process:</p>
  <div style="font-size: 28px; font-weight: bold; background: #f8f9fa; padding: 10px 20px; display: inline-block; border-radius: 6px; letter-spacing: 5px;">%s</div>
  <p>This code will expire in 15 minutes for security reasons.</p>
  <p>If you didn't request a password reset, please ignore this email.</p>
  <p style="color: #e74c3c; font-size: 13px;">Never share this code with anyone.</p>
</div>`, siteName, firstName, code)
	return text, html
}

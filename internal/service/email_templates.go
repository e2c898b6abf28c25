package service

import "fmt"

func verificationEmailTemplate(code, appName string) (subject, body string) {
	subject = fmt.Sprintf("Verify your %s email", appName)
	body = fmt.Sprintf(`Welcome to %s!

Your verification code is: %s

Enter this code to confirm your email address. The code expires in a few
minutes and can be used only once.

If you didn't create an account, you can ignore this email.`, appName, code)
	return subject, body
}

func passwordResetEmailTemplate(code, appName string) (subject, body string) {
	subject = fmt.Sprintf("%s password reset code", appName)
	body = fmt.Sprintf(`Your password reset code is: %s

Enter this code to continue resetting your password. The code expires in a
few minutes and can be used only once.

If you didn't request a password reset, you can ignore this email - your
password will not change.`, code)
	return subject, body
}

func welcomeEmailTemplate(username, appName string) (subject, body string) {
	subject = fmt.Sprintf("Welcome to %s", appName)
	body = fmt.Sprintf(`Hi %s,

Your email is verified and your account is ready. Happy writing!

- The %s team`, username, appName)
	return subject, body
}

package email

import (
	"fmt"
	"html"
	"time"
)

const layout = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
%s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`

// OTPChallenge 注册验证码邮件
func OTPChallenge(code string, ttl time.Duration) (subject, body string) {
	subject = "Your verification code"
	body = fmt.Sprintf(layout, fmt.Sprintf(`
        <h2 style="color: #2563eb;">Verify your email</h2>
        <p>Use the code below to continue creating your account:</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
            %s
        </div>
        <p>The code expires in %d minutes.</p>
        <p>If you did not request this, you can ignore this email.</p>`,
		html.EscapeString(code), int(ttl.Minutes())))
	return subject, body
}

// EnterpriseInquiry 企业套餐咨询，发送到运营邮箱
func EnterpriseInquiry(companyName, companyLink, employees, contact, notes string) (subject, body string) {
	subject = fmt.Sprintf("Enterprise inquiry: %s", companyName)
	if contact == "" {
		contact = "-"
	}
	body = fmt.Sprintf(layout, fmt.Sprintf(`
        <h2 style="color: #2563eb;">New enterprise inquiry</h2>
        <p><strong>Company:</strong> %s</p>
        <p><strong>Website:</strong> %s</p>
        <p><strong>Employees:</strong> %s</p>
        <p><strong>Contact:</strong> %s</p>
        <p><strong>Notes:</strong></p>
        <p style="background-color: #f3f4f6; padding: 10px; white-space: pre-wrap;">%s</p>`,
		html.EscapeString(companyName),
		html.EscapeString(companyLink),
		html.EscapeString(employees),
		html.EscapeString(contact),
		html.EscapeString(notes)))
	return subject, body
}

// PaymentReviewed 付款审核结果通知
func PaymentReviewed(name, planName string, approved bool, comment string, renewsAt *time.Time) (subject, body string) {
	var content string
	if approved {
		subject = "Your payment has been approved"
		renews := ""
		if renewsAt != nil {
			renews = fmt.Sprintf("<p>Your plan renews on %s.</p>", renewsAt.Format("2006-01-02"))
		}
		content = fmt.Sprintf(`
        <h2 style="color: #16a34a;">Plan activated</h2>
        <p>Hi %s,</p>
        <p>Your payment for the <strong>%s</strong> plan has been confirmed and your author plan is now active.</p>
        %s`, html.EscapeString(name), html.EscapeString(planName), renews)
	} else {
		subject = "Your payment could not be confirmed"
		content = fmt.Sprintf(`
        <h2 style="color: #dc2626;">Payment not confirmed</h2>
        <p>Hi %s,</p>
        <p>We could not confirm your payment for the <strong>%s</strong> plan.</p>`,
			html.EscapeString(name), html.EscapeString(planName))
	}
	if comment != "" {
		content += fmt.Sprintf(`
        <p><strong>Reviewer note:</strong> %s</p>`, html.EscapeString(comment))
	}
	return subject, fmt.Sprintf(layout, content)
}

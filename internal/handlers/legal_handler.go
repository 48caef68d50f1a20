package handlers

import (
	"html"

	"github.com/gofiber/fiber/v2"
)

const legalStyle = `<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

// LegalHandler serves the privacy policy and terms pages linked from the
// app store listing.
type LegalHandler struct {
	appName      string
	supportEmail string
}

func NewLegalHandler(appName, supportEmail string) *LegalHandler {
	return &LegalHandler{
		appName:      html.EscapeString(appName),
		supportEmail: html.EscapeString(supportEmail),
	}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Privacy Policy</h1>
<h2>Information We Collect</h2>
<p>We collect your email address, the photos you upload and the details you enter about missing or found animals, including the location where the animal was last seen.</p>
<h2>Who Can See It</h2>
<p>Reports are visible to every signed-in user. Claim photos and remarks are shared only with the owner of the report you respond to, who is notified by email.</p>
<h2>Image Classification</h2>
<p>If you use breed prediction, the photo is sent to our classification service and is not stored by it.</p>
<h2>Account Deletion</h2>
<p>You can delete your account at any time from the app settings.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at ` + h.supportEmail + `</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Terms of Service</h1>
<h2>Acceptable Use</h2>
<p>Only post reports about animals you have actually lost or found, and only file claims you believe in good faith to be correct.</p>
<h2>Your Content</h2>
<p>You keep ownership of the photos you upload and allow ` + h.appName + ` to display them to other users for the purpose of reuniting pets with their owners.</p>
<h2>No Guarantee</h2>
<p>` + h.appName + ` does not verify reports or claims and is not responsible for arrangements made between users.</p>
<h2>Contact</h2>
<p>Questions about these terms can be sent to ` + h.supportEmail + `</p>
</body></html>`)
}

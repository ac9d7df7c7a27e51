package emails

import (
	"fmt"
	"html"
	"time"
)

const (
	themePrimary   = "#1D4ED8"
	themeTextMain  = "#111827"
	themeTextMuted = "#6B7280"
	themeBgBody    = "#F3F4F6"
)

// EmailLayout wraps content in the shared transactional layout.
func EmailLayout(contentHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>StockEx</title>
  <style>
    body { margin: 0; padding: 0; background-color: %s; font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: %s; }
    .card { max-width: 560px; margin: 32px auto; background: #FFFFFF; border-radius: 8px; padding: 32px; }
    .card h1 { font-size: 22px; margin: 0 0 16px 0; }
    .card p { font-size: 15px; line-height: 1.6; margin: 0 0 16px 0; }
    .button { display: inline-block; background: %s; color: #FFFFFF !important; padding: 10px 20px; border-radius: 6px; text-decoration: none; font-weight: 600; }
    .footer { text-align: center; font-size: 12px; color: %s; padding-bottom: 24px; }
  </style>
</head>
<body>
  <div class="card">%s</div>
  <div class="footer">&copy; %d StockEx. Simulated trading, no real money is involved.</div>
</body>
</html>`, themeBgBody, themeTextMain, themePrimary, themeTextMuted, contentHTML, time.Now().Year())
}

// EscapeHTML escapes user-provided strings for safe use in HTML.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

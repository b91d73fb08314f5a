package oauth

import (
	"html/template"

	"github.com/labstack/echo/v4"
)

const pageTitle = "Email Reader"

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Title   string
	Message string
	Icon    string
}

var (
	successPage = pageData{Title: "Login success", Message: "You can close this window.", Icon: "success"}
	failurePage = pageData{Title: "Authentication failed", Message: "You may close this window.", Icon: "error"}
	waitingPage = pageData{Title: "Waiting for auth code...", Message: "Finish signing in with Google in this window.", Icon: "waiting"}
)

func renderPage(c echo.Context, status int, page pageData) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return pageTemplate.Execute(c.Response(), page)
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>{{.Title}} - ` + pageTitle + `</title>
	<style>
	body {
		font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
		margin: 0;
		min-height: 100vh;
		display: flex;
		align-items: center;
		justify-content: center;
		background: #fafafa;
		color: #111;
	}
	.card {
		max-width: 400px;
		padding: 48px 32px;
		text-align: center;
		background: #fff;
		border: 1px solid #e5e5e5;
		border-radius: 12px;
	}
	h1 { font-size: 24px; font-weight: 600; margin: 0 0 8px 0; }
	.success h1 { color: #16a34a; }
	.error h1 { color: #dc2626; }
	.waiting h1 { color: #666; }
	</style>
</head>
<body>
	<div class="card {{.Icon}}">
		<h1>{{.Title}}</h1>
		<p>{{.Message}}</p>
	</div>
</body>
</html>`

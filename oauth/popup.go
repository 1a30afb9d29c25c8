package oauth

import (
	"html/template"
	"net/http"
)

// Error codes surfaced to the host application via the redirect fallback.
const (
	ErrCodeAuthFailed      = "facebook_auth_failed"
	ErrCodeInvalidCallback = "invalid_callback"
)

// Outcome is what the popup bridge reports back to the window that opened
// the OAuth popup.
type Outcome struct {
	Shop         string
	ErrorMessage string
	ErrorCode    string
}

func Success(shop string) Outcome {
	return Outcome{Shop: shop}
}

func Failure(message, code string) Outcome {
	return Outcome{ErrorMessage: message, ErrorCode: code}
}

func (o Outcome) ok() bool {
	return o.ErrorMessage == ""
}

// bridgeTmpl is served for every callback result. The script posts the
// outcome to the opener when the window is a popup, pinned to the configured
// app origin, and closes itself; otherwise it redirects the top-level window
// back into the app. Either path is entered exactly once.
var bridgeTmpl = template.Must(template.New("bridge").Parse(`<!DOCTYPE html>
<html>
<head><title>Facebook Connection</title></head>
<body>
<p>{{.Message}}</p>
<script>
(function() {
  var payload = {
    type: {{.Type}},
    timestamp: Date.now()
  };
  {{if .Shop}}payload.shop = {{.Shop}};{{end}}
  {{if .ErrorMessage}}payload.error = {{.ErrorMessage}};{{end}}

  if (window.opener && !window.opener.closed) {
    window.opener.postMessage(payload, {{.TargetOrigin}});
    setTimeout(function() { window.close(); }, 1500);
  } else {
    setTimeout(function() { window.location.href = {{.RedirectURL}}; }, 1500);
  }
})();
</script>
</body>
</html>
`))

type bridgeData struct {
	Type         string
	Message      string
	Shop         string
	ErrorMessage string
	TargetOrigin string
	RedirectURL  string
}

// WritePopupBridge renders the 200 text/html bridge document. Errors never
// produce a hard redirect here; the embedded script decides popup vs
// top-level navigation.
func WritePopupBridge(w http.ResponseWriter, appURL string, outcome Outcome) {
	data := bridgeData{
		TargetOrigin: appURL,
	}
	if outcome.ok() {
		data.Type = "FACEBOOK_AUTH_SUCCESS"
		data.Message = "Facebook account connected. You can close this window."
		data.Shop = outcome.Shop
		data.RedirectURL = appURL + "/app?success=facebook_connected"
	} else {
		data.Type = "FACEBOOK_AUTH_ERROR"
		data.Message = "Facebook connection failed: " + outcome.ErrorMessage
		data.ErrorMessage = outcome.ErrorMessage
		code := outcome.ErrorCode
		if code == "" {
			code = ErrCodeAuthFailed
		}
		data.RedirectURL = appURL + "/app?error=" + code
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := bridgeTmpl.Execute(w, data); err != nil {
		LogError("Error rendering popup bridge: %v", err)
	}
}

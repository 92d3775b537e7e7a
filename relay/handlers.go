package relay

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/jrsteele09/go-cv-session/token"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// maxSetBody bounds the JSON body accepted by the Set handler.
const maxSetBody = 64 << 10

// Write renders resp on w.
func Write(w http.ResponseWriter, resp Response) {
	for _, c := range resp.Cookies {
		w.Header().Add("Set-Cookie", token.Directive(c))
	}
	if resp.Location != "" {
		w.Header().Set("Location", resp.Location)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(resp.Status)
	if resp.Body != nil {
		if err := json.NewEncoder(w).Encode(resp.Body); err != nil {
			log.Err(err).Msg("Failed to encode relay response")
		}
	}
}

// SetHandler serves the Set relay. Tokens come from a JSON body when one is sent,
// otherwise from the incoming cookies.
func SetHandler(redirectURL string, opts token.CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens := token.FromCookies(r.Cookies())
		if isJSON(r) {
			var body token.Tokens
			if err := json.NewDecoder(io.LimitReader(r.Body, maxSetBody)).Decode(&body); err != nil {
				log.Err(err).Msg("Set relay: invalid body")
				Write(w, notAuthenticated())
				return
			}
			tokens = body
		}
		if !tokens.Complete() {
			log.Warn().
				Bool("id_token", tokens.IDToken != "").
				Bool("access_token", tokens.AccessToken != "").
				Bool("refresh_token", tokens.RefreshToken != "").
				Msg("Set relay: missing tokens")
		}
		Write(w, Set(tokens, redirectURL, opts))
	}
}

func GetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Write(w, Get(r.Cookies()))
	}
}

func ClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Write(w, Clear())
	}
}

func isJSON(r *http.Request) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

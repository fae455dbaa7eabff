// Package middleware holds the HTTP wrappers shared by every route.
package middleware

import (
	"net/http"

	"github.com/diewo77/go-backoffice/i18n"
)

const langCookie = "lang"

// Prefs picks the response language (cookie > query > Accept-Language) and
// stores it in the request context. A language given in the query is kept in
// a cookie for 30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" && i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		if !i18n.Supported(lang) {
			lang = i18n.DefaultLang
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Messages localizes response messages. Vietnamese is the source language.
type Messages struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

// NewMessages loads the embedded locale files.
func NewMessages(defaultLocale string) (*Messages, error) {
	if defaultLocale == "" {
		defaultLocale = "vi"
	}

	bundle := i18n.NewBundle(language.Vietnamese)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
	}
	return &Messages{bundle: bundle, defaultLocale: defaultLocale}, nil
}

type localizerKey struct{}

// Middleware picks the localizer from the lang query parameter or the
// Accept-Language header.
func (m *Messages) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := i18n.NewLocalizer(m.bundle, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), m.defaultLocale)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localizerKey{}, l)))
	})
}

// T translates messageID for the request's locale. Unknown ids come back
// unchanged.
func (m *Messages) T(ctx context.Context, messageID string, data map[string]any) string {
	l, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	if !ok {
		l = i18n.NewLocalizer(m.bundle, m.defaultLocale)
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
	if err != nil {
		return messageID
	}
	return msg
}

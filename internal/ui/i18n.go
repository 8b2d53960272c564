package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/picpoul/donorhub/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded locale into the bundle. The language list
// offered in settings is derived from the bundle filenames, so shipping a new
// translation is just adding its active.<lang>.json file.
func (app *DonorHubApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var langs []string
	for _, entry := range entries {
		lang, ok := localeLang(entry.Name())
		if !ok {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, entry.Name(),
				config.LogKeyError, err,
			)
			continue
		}
		langs = append(langs, lang)
	}
	slog.Debug(config.MsgLocaleLoaded,
		config.LogKeyComponent, config.CompI18n,
		config.LogKeyCount, len(langs),
	)

	app.SupportedLanguages = langs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// localeLang extracts the language code from an embedded locale filename.
// Only files of the form active.<lang>.json participate.
func localeLang(name string) (string, bool) {
	if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	lang := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
	return lang, lang != ""
}

// UpdateLocalizer rebuilds the translator for the preferred language.
func (app *DonorHubApp) UpdateLocalizer() {
	lang := app.Preferences.String(config.PrefLanguage)
	if lang == "" {
		lang = config.DefaultLanguage
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
	slog.Debug(config.MsgLangActive,
		config.LogKeyComponent, config.CompI18n,
		config.LogKeyLang, lang,
	)
}

// GetMsg translates a key, falling back to the key itself so the UI never
// renders an empty label.
func (app *DonorHubApp) GetMsg(key string) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

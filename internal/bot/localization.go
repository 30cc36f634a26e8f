package bot

import "fmt"

// Localization manages reply text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyGreeting           = "greeting"
	KeyGreetingYouTube    = "greeting_youtube"
	KeyGreetingYandex     = "greeting_yandex"
	KeyGreetingFooter     = "greeting_footer"
	KeyYandexUnavailable  = "yandex_unavailable"
	KeyStartingYouTube    = "starting_youtube"
	KeyStartingYandex     = "starting_yandex"
	KeyAudioReady         = "audio_ready"
	KeyInvalidYandexURL   = "invalid_yandex_url"
	KeyInvalidURL         = "invalid_url"
	KeyDownloadFailed     = "download_failed"
	KeyFilesystemError    = "filesystem_error"
	KeyDeliveryFailed     = "delivery_failed"
	KeyFileTooLarge       = "file_too_large"
	KeyConfigurationError = "configuration_error"
	KeyInternalError      = "internal_error"
	KeyBusy               = "busy"
	KeySlowDown           = "slow_down"
)

// Supported languages
const (
	LanguageRussian = "ru"
	LanguageEnglish = "en"
)

// NewLocalization creates a localization manager for lang, falling back to
// Russian for unknown codes
func NewLocalization(lang string) *Localization {
	l := &Localization{
		currentLanguage: LanguageRussian,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	l.SetLanguage(lang)
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = LanguageRussian
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	if texts, exists := l.texts[LanguageRussian]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// Format fills the localized template for key
func (l *Localization) Format(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

func (l *Localization) initializeTexts() {
	l.texts[LanguageRussian] = map[string]string{
		KeyGreeting:           "Привет! Я могу скачивать аудио из:",
		KeyGreetingYouTube:    "\n- YouTube",
		KeyGreetingYandex:     "\n- Яндекс.Музыки",
		KeyGreetingFooter:     "\n\nПросто отправь мне ссылку!",
		KeyYandexUnavailable:  "❌ Извините, поддержка Яндекс.Музыки временно недоступна",
		KeyStartingYouTube:    "⏳ Начинаю загрузку с YouTube...",
		KeyStartingYandex:     "⏳ Начинаю загрузку трека с Яндекс.Музыки...",
		KeyAudioReady:         "✅ Аудио готово! Отправляю...",
		KeyInvalidYandexURL:   "❌ Неверный формат ссылки на Яндекс.Музыку",
		KeyInvalidURL:         "❌ Неверный формат ссылки",
		KeyDownloadFailed:     "❌ Ошибка: %s",
		KeyFilesystemError:    "❌ Ошибка: не удалось подготовить временную папку",
		KeyDeliveryFailed:     "❌ Ошибка: не удалось отправить файл",
		KeyFileTooLarge:       "❌ Файл слишком большой для отправки (%d МБ, максимум %d МБ)",
		KeyConfigurationError: "❌ Сервис временно недоступен",
		KeyInternalError:      "❌ Внутренняя ошибка, попробуйте позже",
		KeyBusy:               "⏳ Дождитесь окончания предыдущей загрузки",
		KeySlowDown:           "⏳ Слишком много запросов, подождите немного",
	}

	l.texts[LanguageEnglish] = map[string]string{
		KeyGreeting:           "Hi! I can download audio from:",
		KeyGreetingYouTube:    "\n- YouTube",
		KeyGreetingYandex:     "\n- Yandex Music",
		KeyGreetingFooter:     "\n\nJust send me a link!",
		KeyYandexUnavailable:  "❌ Sorry, Yandex Music support is temporarily unavailable",
		KeyStartingYouTube:    "⏳ Starting YouTube download...",
		KeyStartingYandex:     "⏳ Starting Yandex Music download...",
		KeyAudioReady:         "✅ Audio is ready! Sending...",
		KeyInvalidYandexURL:   "❌ Invalid Yandex Music link format",
		KeyInvalidURL:         "❌ Invalid link format",
		KeyDownloadFailed:     "❌ Error: %s",
		KeyFilesystemError:    "❌ Error: could not prepare a temporary folder",
		KeyDeliveryFailed:     "❌ Error: could not send the file",
		KeyFileTooLarge:       "❌ File is too large to send (%d MB, limit %d MB)",
		KeyConfigurationError: "❌ Service is temporarily unavailable",
		KeyInternalError:      "❌ Internal error, please try again later",
		KeyBusy:               "⏳ Please wait for your previous download to finish",
		KeySlowDown:           "⏳ Too many requests, please slow down",
	}
}

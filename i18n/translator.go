package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for error codes.
// data provides the values substituted into {placeholders} of the message
// (for example "path", "expected" or "status").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogue = map[string]map[string]string{
	"en": {
		"invalid_type":             "expected {expected} at {path}, got {actual}",
		"required":                 "required field {path} is missing",
		"malformed_json":           "malformed JSON: {cause}",
		"encode_mismatch":          "cannot encode {got} as {expected} at {path}",
		"remote_forbidden":         "forbidden (status {status}): {body}",
		"remote_not_found":         "not found (status {status}): {body}",
		"remote_too_large":         "request too large (status {status}): {body}",
		"remote_too_many_requests": "too many requests (status {status}): {body}",
		"remote_client_error":      "request rejected (status {status}): {body}",
		"remote_server_error":      "server error (status {status}): {body}",
	},
	"ja": {
		"invalid_type":             "{path} には {expected} が必要ですが {actual} でした",
		"required":                 "必須フィールド {path} がありません",
		"malformed_json":           "JSON の解析に失敗しました: {cause}",
		"encode_mismatch":          "{path} の {got} を {expected} としてエンコードできません",
		"remote_forbidden":         "アクセスが拒否されました (ステータス {status}): {body}",
		"remote_not_found":         "見つかりません (ステータス {status}): {body}",
		"remote_too_large":         "リクエストが大きすぎます (ステータス {status}): {body}",
		"remote_too_many_requests": "リクエストが多すぎます (ステータス {status}): {body}",
		"remote_client_error":      "リクエストが拒否されました (ステータス {status}): {body}",
		"remote_server_error":      "サーバーエラー (ステータス {status}): {body}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalogue[t.lang][code]
	if !ok {
		tmpl, ok = catalogue["en"][code]
	}
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

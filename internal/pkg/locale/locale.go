// Package locale implements the two-locale content model of the department
// site: Traditional Chinese is primary, English the fallback.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	ZhTW = "zh-TW"
	En   = "en"

	Default = ZhTW
)

// Supported lists locales in fallback order.
var Supported = []string{ZhTW, En}

// Text is a per-locale string. Entities persist it with gorm's json serializer.
type Text map[string]string

// Get returns the first non-empty value for the preferred locale, then zh-TW,
// then en, then any other locale present.
func (t Text) Get(preferred string) string {
	if v := strings.TrimSpace(t[Normalize(preferred)]); v != "" {
		return t[Normalize(preferred)]
	}
	for _, l := range Supported {
		if v := strings.TrimSpace(t[l]); v != "" {
			return t[l]
		}
	}
	for _, v := range t {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (t Text) IsEmpty() bool {
	return t.Get(Default) == ""
}

var matcher = language.NewMatcher([]language.Tag{
	language.MustParse(ZhTW),
	language.English,
})

// Negotiate picks the supported locale that best matches an Accept-Language
// header value. Headers that match nothing return Default.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Normalize maps Accept-Language style tags onto a supported locale.
// Unknown tags return Default.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ",;"); i >= 0 {
		tag = tag[:i]
	}
	lower := strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	switch {
	case lower == "":
		return Default
	case lower == "en" || strings.HasPrefix(lower, "en-"):
		return En
	case lower == "zh" || strings.HasPrefix(lower, "zh-"):
		return ZhTW
	}
	return Default
}

var messages = map[string]map[string]string{
	"attachment.destroyed": {ZhTW: "附件已移除", En: "Attachment removed"},
	"attachment.restored":  {ZhTW: "附件已復原", En: "Attachment restored"},
	"attachment.deleted":   {ZhTW: "附件已永久刪除", En: "Attachment permanently deleted"},
	"post.created":         {ZhTW: "公告已新增", En: "Post created"},
	"post.updated":         {ZhTW: "公告已更新", En: "Post updated"},
	"post.destroyed":       {ZhTW: "公告已移除", En: "Post removed"},
	"post.restored":        {ZhTW: "公告已復原", En: "Post restored"},
	"post.deleted":         {ZhTW: "公告已永久刪除", En: "Post permanently deleted"},
	"contact.received":     {ZhTW: "訊息已送出，我們將盡快回覆", En: "Message sent, we will get back to you soon"},
	"contact.updated":      {ZhTW: "訊息狀態已更新", En: "Message status updated"},
	"contact.deleted":      {ZhTW: "訊息已刪除", En: "Message deleted"},
}

// Message looks up a flash message. Unknown keys are returned unchanged.
func Message(loc, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	return Text(m).Get(loc)
}

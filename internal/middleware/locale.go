package middleware

import (
	"github.com/gin-gonic/gin"

	"csdept/internal/pkg/locale"
)

const ContextLocale = "locale"

// Locale picks the response language from ?locale= then Accept-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextLocale, resolveLocale(c))
		c.Next()
	}
}

func resolveLocale(c *gin.Context) string {
	if q := c.Query("locale"); q != "" {
		return locale.Normalize(q)
	}
	return locale.Negotiate(c.GetHeader("Accept-Language"))
}

// LocaleFrom returns the locale chosen by Locale, or the default.
func LocaleFrom(c *gin.Context) string {
	if v := c.GetString(ContextLocale); v != "" {
		return v
	}
	return locale.Default
}

// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// localeVars are consulted in POSIX precedence order.
var localeVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// DetectLocale returns the two-letter language code of the invoking user's
// locale, or "" when it cannot be determined.
func DetectLocale() string {
	return detectLocale(os.Getenv)
}

func detectLocale(getenv func(string) string) string {
	for _, name := range localeVars {
		if value := getenv(name); value != "" {
			return baseLanguage(value)
		}
	}
	return ""
}

// baseLanguage reduces a POSIX locale string such as "fr_FR.UTF-8@euro" to
// its base language code.
func baseLanguage(value string) string {
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	if value == "" || value == "C" || value == "POSIX" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

package mapper

import (
	"regexp"

	"github.com/go-openapi/inflect"
)

var unpluralizables = map[string]struct{}{
	"equipment":   {},
	"information": {},
	"rice":        {},
	"money":       {},
	"species":     {},
	"series":      {},
	"fish":        {},
	"sheep":       {},
	"deer":        {},
}

type pluralization struct {
	pattern     *regexp.Regexp
	replacement string
}

// 从最少见的情况开始，顺序很重要，第一个匹配上的规则生效
var pluralizations = []pluralization{
	{regexp.MustCompile(`^person$`), "people"},
	{regexp.MustCompile(`^ox$`), "oxen"},
	{regexp.MustCompile(`^child$`), "children"},
	{regexp.MustCompile(`^foot$`), "feet"},
	{regexp.MustCompile(`^tooth$`), "teeth"},
	{regexp.MustCompile(`^goose$`), "geese"},
	// wolf, wife
	{regexp.MustCompile(`(.*)fe?$`), "${1}ves"},
	{regexp.MustCompile(`(.*)man$`), "${1}men"},
	{regexp.MustCompile(`(.+[aeiou]y)$`), "${1}s"},
	{regexp.MustCompile(`(.+[^aeiou])y$`), "${1}ies"},
	{regexp.MustCompile(`(.+z)$`), "${1}zes"},
	{regexp.MustCompile(`([m|l])ouse$`), "${1}ice"},
	// matrix, index
	{regexp.MustCompile(`(.+)(e|i)x$`), "${1}ices"},
	{regexp.MustCompile(`(octop|vir)us$`), "${1}i"},
	{regexp.MustCompile(`(.+(s|x|sh|ch))$`), "${1}es"},
	{regexp.MustCompile(`(.+)`), "${1}s"},
}

// Pluralize 英文单词的复数形式，例如 robot -> robots, penny -> pennies
// 不可数的单词原样返回
func Pluralize(singular string) string {
	if _, ok := unpluralizables[singular]; ok {
		return singular
	}
	for _, p := range pluralizations {
		if p.pattern.MatchString(singular) {
			return p.pattern.ReplaceAllString(singular, p.replacement)
		}
	}
	return ""
}

// Underscore 列名使用下划线风格，FirstName -> first_name
func Underscore(name string) string {
	return inflect.Underscore(name)
}

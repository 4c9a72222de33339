package bank

import "regexp"

var (
	mathContainerSpan = regexp.MustCompile(`(?i)<span.+?class=.math_container.*?>([\s\S]+?)</span>`)
	mathParenDisplay  = regexp.MustCompile(`(?i)\$\$\\\(([\s\S]+?)\\\)\$\$`)
	mathDollarBlock   = regexp.MustCompile(`(?i)\$\$(.+?)\$\$`)
)

// StripMathContainer rewrites math container spans and $$\(..\)$$ wrappers
// into the canonical $$..$$ form. Everything else is left as is.
func StripMathContainer(text string) string {
	text = mathContainerSpan.ReplaceAllString(text, `$$$$${1}$$$$`)
	return mathParenDisplay.ReplaceAllString(text, `$$$$${1}$$$$`)
}

// ToInlineDisplay rewrites $$..$$ spans into \\( .. \\) inline delimiters.
// It is not the inverse of StripMathContainer.
func ToInlineDisplay(text string) string {
	return mathDollarBlock.ReplaceAllString(text, `\\( ${1} \\)`)
}

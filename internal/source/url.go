package source

import "strings"

// Expand fills {name} placeholders of an endpoint template. Values are
// inserted verbatim; callers escape query text first.
func Expand(template string, values map[string]string) string {
	if len(values) == 0 {
		return template
	}
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

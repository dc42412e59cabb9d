package tmpl

import "strings"

// Vars holds runtime values available to templates.
type Vars struct {
	Name      string // manifest name
	ShortName string // manifest short_name
	Timestamp string // generation time, unix millis
	Kind      string // "bundle", "ico" or "png"
	Source    string // input file name, or "text"
	Bytes     string // output size, e.g. "14.8 KB"
}

// Expand replaces template placeholders in s with runtime values.
// {name} → name as-is, {Name} → title-cased; {short_name}, {timestamp},
// {kind}, {source} and {bytes} are substituted as-is.
func Expand(s string, v Vars) string {
	r := strings.NewReplacer(
		"{Name}", TitleCase(v.Name),
		"{name}", v.Name,
		"{short_name}", v.ShortName,
		"{timestamp}", v.Timestamp,
		"{kind}", v.Kind,
		"{source}", v.Source,
		"{bytes}", v.Bytes,
	)
	return r.Replace(s)
}

// TitleCase uppercases the first byte of s.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

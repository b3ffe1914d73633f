package chatglot

import "strings"

// RTLScripts contains writing-system codes that run right to left.
var RTLScripts = map[string]bool{
	"Arab": true, // Arabic
	"Hebr": true, // Hebrew
	"Syrc": true, // Syriac
	"Thaa": true, // Thaana
	"Nkoo": true, // N'Ko
}

// rtlBaseLangs covers codes that omit a script suffix.
var rtlBaseLangs = map[string]bool{
	"ar":  true,
	"arb": true,
	"he":  true,
	"heb": true,
	"fa":  true,
	"pes": true,
	"ur":  true,
	"urd": true,
}

// ScriptOf extracts the script part of a service language code
// (e.g. "Arab" from "arb_Arab"). Returns "" when the code carries no script.
func ScriptOf(code string) string {
	if i := strings.LastIndex(code, "_"); i >= 0 {
		return code[i+1:]
	}
	return ""
}

// BaseLangOf extracts the language part of a service code
// (e.g. "arb" from "arb_Arab").
func BaseLangOf(code string) string {
	if i := strings.Index(code, "_"); i >= 0 {
		return strings.ToLower(code[:i])
	}
	return strings.ToLower(code)
}

// IsRightToLeftCode reports whether a language code renders right to left,
// judged by its script suffix or, failing that, its base language.
func IsRightToLeftCode(code string) bool {
	if RTLScripts[ScriptOf(code)] {
		return true
	}
	return rtlBaseLangs[BaseLangOf(code)]
}

// Direction returns "rtl" or "ltr" for a language code, suitable for a dir
// attribute hint.
func Direction(code string) string {
	if IsRightToLeftCode(code) {
		return "rtl"
	}
	return "ltr"
}

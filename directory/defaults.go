package directory

import (
	"time"

	"github.com/chatglot/chatglot"
)

// defaultLanguages is the built-in set served when the remote directory is
// unreachable: auto-detect plus a handful of major languages, enough to keep
// the selector functional offline.
var defaultLanguages = []chatglot.Language{
	{Code: chatglot.AutoDetect, DisplayName: "Detect language", NativeName: "Detect language", IsPopular: true},
	{Code: "eng_Latn", DisplayName: "English", NativeName: "English", Family: "Indo-European", Script: "Latn", IsPopular: true},
	{Code: "spa_Latn", DisplayName: "Spanish", NativeName: "Español", Family: "Indo-European", Script: "Latn", IsPopular: true},
	{Code: "fra_Latn", DisplayName: "French", NativeName: "Français", Family: "Indo-European", Script: "Latn", IsPopular: true},
	{Code: "deu_Latn", DisplayName: "German", NativeName: "Deutsch", Family: "Indo-European", Script: "Latn", IsPopular: true},
	{Code: "por_Latn", DisplayName: "Portuguese", NativeName: "Português", Family: "Indo-European", Script: "Latn", IsPopular: true},
	{Code: "rus_Cyrl", DisplayName: "Russian", NativeName: "Русский", Family: "Indo-European", Script: "Cyrl", IsPopular: true},
	{Code: "zho_Hans", DisplayName: "Chinese (Simplified)", NativeName: "中文", Family: "Sino-Tibetan", Script: "Hans", IsPopular: true},
	{Code: "jpn_Jpan", DisplayName: "Japanese", NativeName: "日本語", Family: "Japonic", Script: "Jpan", IsPopular: true},
	{Code: "kor_Hang", DisplayName: "Korean", NativeName: "한국어", Family: "Koreanic", Script: "Hang", IsPopular: true},
	{Code: "arb_Arab", DisplayName: "Arabic", NativeName: "العربية", Family: "Afro-Asiatic", Script: "Arab", IsPopular: true, IsRightToLeft: true},
	{Code: "hin_Deva", DisplayName: "Hindi", NativeName: "हिन्दी", Family: "Indo-European", Script: "Deva", IsPopular: true},
}

// fallbackSnapshot builds a fresh snapshot of the built-in set.
func fallbackSnapshot() *Snapshot {
	languages := make([]chatglot.Language, len(defaultLanguages))
	copy(languages, defaultLanguages)

	codes := make([]string, 0, len(languages))
	for _, lang := range languages {
		codes = append(codes, lang.Code)
	}

	return &Snapshot{
		Languages:    languages,
		PopularCodes: codes,
		PopularPairs: []chatglot.LanguagePair{
			{Source: chatglot.AutoDetect, Target: "eng_Latn"},
			{Source: chatglot.AutoDetect, Target: "spa_Latn"},
			{Source: "eng_Latn", Target: "spa_Latn"},
		},
		FetchedAt:    time.Now(),
		FromFallback: true,
	}
}

package extract

import (
	"regexp"
	"strings"
)

// genericTerms are standalone terms too generic to be a trend. Matching is
// case-insensitive on the whole keyword.
var genericTerms = map[string]struct{}{
	"ai":                  {},
	"llm":                 {},
	"genai":               {},
	"generative ai":       {},
	"machine learning":    {},
	"deep learning":       {},
	"artificial intelligence": {},
	"chatbot":             {},
	"인공지능":                {},
	"생성형 ai":              {},
	"머신러닝":                {},
	"딥러닝":                 {},
	"챗봇":                  {},
	"모델":                  {},
	"기술":                  {},
	"산업":                  {},
	"시장":                  {},
	"서비스":                 {},
	"플랫폼":                 {},
	"솔루션":                 {},
}

// genericWords are words that carry no trend signal on their own; a phrase
// made only of these is dropped.
var genericWords = map[string]struct{}{
	"ai": {}, "llm": {}, "genai": {}, "model": {}, "models": {},
	"agent": {}, "agents": {}, "tool": {}, "tools": {}, "system": {},
	"platform": {}, "service": {}, "technology": {}, "industry": {},
	"market": {}, "startup": {}, "news": {}, "update": {}, "new": {},
	"generative": {}, "artificial": {}, "intelligence": {},
	"machine": {}, "learning": {}, "deep": {}, "neural": {},
	"인공지능": {}, "모델": {}, "에이전트": {}, "기술": {}, "산업": {},
	"시장": {}, "서비스": {}, "플랫폼": {}, "솔루션": {}, "기업": {}, "출시": {},
}

// nonAITopics is the blocklist of recurring non-AI noise the raw tiers drag
// in. Substring match, case-insensitive.
var nonAITopics = []string{
	"crypto", "bitcoin", "ethereum", "nft",
	"주식", "증시", "코스피", "부동산", "환율",
	"iphone 판매", "갤럭시 판매",
}

var (
	// aiAgentPrefixRe matches "AI agent(s)" / "AI 에이전트" heads; the
	// remainder decides whether the phrase survives.
	aiAgentPrefixRe = regexp.MustCompile(`(?i)^ai[ -](agents?|에이전트)\b`)
	// aiGenericPrefixRe matches "AI 기반", "AI-powered" style heads.
	aiGenericPrefixRe = regexp.MustCompile(`(?i)^ai[ -](기반|모델|투자|학습용|활용|powered|based|driven|enabled)\b`)

	// Korean headline tells: sentence-final endings, quotes, counters.
	koSentenceEndingRe = regexp.MustCompile(`(한다|했다|된다|됐다|입니다|합니다|하나|할까|인가|라고)$`)
	koQuoteRe          = regexp.MustCompile(`[“”"'‘’]`)
	koCounterRe        = regexp.MustCompile(`\d+\s*(종|개|건|명|곳)`)

	// mixedTransliterationRe catches remnants like "클로드-code" where a
	// hyphen glues Hangul to Latin.
	mixedTransliterationRe = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]-[A-Za-z]|[A-Za-z]-[\x{AC00}-\x{D7A3}]`)
)

// koreanParticles are trailing particles ignored when counting significant
// words in a Korean phrase.
var koreanParticles = map[string]struct{}{
	"의": {}, "를": {}, "을": {}, "이": {}, "가": {}, "은": {}, "는": {},
	"에": {}, "와": {}, "과": {}, "로": {}, "으로": {}, "에서": {},
}

// Keep reports whether a keyword survives the hard-drop filters. Filters
// apply in a fixed order and the first match drops the keyword.
func Keep(keyword string) bool {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return false
	}
	lower := strings.ToLower(kw)

	if _, generic := genericTerms[lower]; generic {
		return false
	}
	if allGenericPhrase(lower) {
		return false
	}
	if m := aiAgentPrefixRe.FindString(kw); m != "" && onlyGenericTail(kw[len(m):]) {
		return false
	}
	if m := aiGenericPrefixRe.FindString(kw); m != "" && onlyGenericTail(kw[len(m):]) {
		return false
	}
	if significantWordCount(kw) > 4 {
		return false
	}
	if looksLikeKoreanHeadline(kw) {
		return false
	}
	for _, topic := range nonAITopics {
		if strings.Contains(lower, topic) {
			return false
		}
	}
	if mixedTransliterationRe.MatchString(kw) {
		return false
	}
	return true
}

// allGenericPhrase reports whether every word of length >= 3 in a
// multi-word phrase belongs to the generic word set.
func allGenericPhrase(lower string) bool {
	words := strings.Fields(lower)
	if len(words) < 2 {
		return false
	}
	checked := 0
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		checked++
		if _, generic := genericWords[w]; !generic {
			return false
		}
	}
	return checked > 0
}

// onlyGenericTail reports whether every word after a matched prefix is
// generic (or the tail is empty).
func onlyGenericTail(tail string) bool {
	for _, w := range strings.Fields(strings.ToLower(tail)) {
		if _, generic := genericWords[w]; !generic {
			return false
		}
	}
	return true
}

// significantWordCount counts words after removing Korean particles.
func significantWordCount(kw string) int {
	count := 0
	for _, w := range strings.Fields(kw) {
		if _, particle := koreanParticles[w]; particle {
			continue
		}
		count++
	}
	return count
}

// looksLikeKoreanHeadline detects article headlines that slipped through
// extraction: sentence-final verb endings, quote marks, counter phrases.
func looksLikeKoreanHeadline(kw string) bool {
	if !containsHangul(kw) {
		return false
	}
	return koSentenceEndingRe.MatchString(kw) || koQuoteRe.MatchString(kw) || koCounterRe.MatchString(kw)
}

package keywords

// Stopword tables for candidate-phrase filtering. The Korean side lists
// high-frequency particles, light verbs, and reporting verbs that dominate
// news copy; the English side is the usual function-word set.
var koreanStopwords = map[string]struct{}{
	"이": {}, "그": {}, "저": {}, "것": {}, "수": {}, "등": {}, "및": {},
	"또": {}, "또한": {}, "그리고": {}, "하지만": {}, "그러나": {}, "이번": {},
	"지난": {}, "오늘": {}, "내일": {}, "어제": {}, "통해": {}, "위해": {},
	"대해": {}, "대한": {}, "관련": {}, "있다": {}, "없다": {}, "했다": {},
	"밝혔다": {}, "말했다": {}, "전했다": {}, "덧붙였다": {}, "강조했다": {},
	"이라고": {}, "라고": {}, "하며": {}, "하고": {}, "에서": {}, "에게": {},
	"부터": {}, "까지": {}, "대통령은": {}, "기자": {}, "뉴스": {}, "연합뉴스": {},
}

var englishStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "he": {},
	"her": {}, "his": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {},
	"on": {}, "or": {}, "said": {}, "she": {}, "that": {}, "the": {},
	"their": {}, "there": {}, "they": {}, "this": {}, "to": {}, "was": {},
	"were": {}, "which": {}, "while": {}, "who": {}, "will": {}, "with": {},
	"would": {}, "about": {}, "after": {}, "before": {}, "also": {},
	"been": {}, "but": {}, "had": {}, "not": {}, "we": {}, "you": {},
}

// relationTerms boost keyword phrases describing diplomatic or political
// interaction, the signal the original ranking was tuned for.
var relationTerms = []string{
	"회담", "협력", "관계", "회의", "발표", "대화", "담화", "중재",
	"교섭", "협상", "동맹", "문제", "논란", "비판", "우려", "방침",
}

func isStopword(token string) bool {
	if _, ok := koreanStopwords[token]; ok {
		return true
	}

	_, ok := englishStopwords[token]

	return ok
}

// Package discovery implements the two-phase source discovery loop of
// spec.md §4.10: a scan phase that proposes candidate sources via web
// search, an optional custom-search API, and seed-URL crawling; and a
// validate phase that probes, scores, and optionally auto-promotes each
// candidate to a live Source.
package discovery

// keyword is one weighted term in the bilingual relevance lexicon. Weight
// reflects how strongly the term signals on-topic content; English and
// Chinese terms for the same concept carry the same weight.
type keyword struct {
	term   string
	weight int
}

// relevanceLexicon scores candidate content against the transport/logistics
// domain this aggregator covers. Grounded in the domain vocabulary implied
// by entity.TransportMode and the topic taxonomy already used by
// enrichment's primary_topic field.
var relevanceLexicon = []keyword{
	{"container shipping", 3}, {"集装箱运输", 3},
	{"freight rate", 3}, {"运费", 3},
	{"ocean freight", 3}, {"海运", 3},
	{"port congestion", 3}, {"港口拥堵", 3},
	{"supply chain", 2}, {"供应链", 2},
	{"logistics", 2}, {"物流", 2},
	{"air cargo", 3}, {"空运", 3},
	{"rail freight", 3}, {"铁路货运", 3},
	{"trucking", 2}, {"公路运输", 2},
	{"customs", 1}, {"海关", 1},
	{"tariff", 2}, {"关税", 2},
	{"shipping line", 2}, {"船公司", 2},
	{"bunker fuel", 1}, {"燃油附加费", 1},
	{"warehouse", 1}, {"仓储", 1},
}

// searchQueries is the fixed set of free-web-search queries the scan phase
// issues, one per cycle per query, bounded to spec.md §4.10's "~25 queries"
// budget.
var searchQueries = []string{
	"container shipping news", "集装箱海运新闻",
	"ocean freight rates today", "海运运价 最新",
	"port congestion report", "港口拥堵 最新消息",
	"air cargo industry news", "空运物流新闻",
	"rail freight news", "铁路货运新闻",
	"trucking industry news", "公路货运新闻",
	"supply chain disruption news", "供应链中断新闻",
	"shipping line announcement", "船公司公告",
	"logistics technology news", "物流科技新闻",
	"customs regulation update", "海关新规",
	"freight forwarder news", "货代新闻",
	"bunker fuel surcharge", "燃油附加费公告",
	"warehouse automation news",
}

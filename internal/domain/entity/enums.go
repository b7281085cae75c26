package entity

// SourceKind identifies which adapter shape a Source uses.
type SourceKind string

const (
	SourceKindFeed      SourceKind = "feed"
	SourceKindAPI       SourceKind = "api"
	SourceKindScraper   SourceKind = "scraper"
	SourceKindUniversal SourceKind = "universal"
)

func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindFeed, SourceKindAPI, SourceKindScraper, SourceKindUniversal:
		return true
	}
	return false
}

// HealthStatus reflects a source's 24h fetch success rate (see spec.md §7).
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthFailing  HealthStatus = "failing"
)

// ProcessingStatus tracks an article's progress through the enrichment pipeline.
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// Sentiment is the enrichment-assigned tone of an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Urgency is the enrichment-assigned time-sensitivity of an article.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// rank returns an ordering value used to implement urgency_min semantics
// (low < medium < high) in subscription predicates.
func (u Urgency) rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	}
	return 0
}

// AtLeast reports whether u is at least as urgent as min.
func (u Urgency) AtLeast(min Urgency) bool {
	if min == "" {
		return true
	}
	return u.rank() >= min.rank()
}

// MarketImpact is the enrichment-assigned business significance of an article.
type MarketImpact string

const (
	MarketImpactHigh   MarketImpact = "high"
	MarketImpactMedium MarketImpact = "medium"
	MarketImpactLow    MarketImpact = "low"
)

// Valid reports whether m is one of the enumerated impact levels.
func (m MarketImpact) Valid() bool {
	switch m {
	case MarketImpactHigh, MarketImpactMedium, MarketImpactLow:
		return true
	}
	return false
}

// TransportMode is one of the logistics modes an article can be tagged with.
type TransportMode string

const (
	TransportOcean TransportMode = "ocean"
	TransportAir   TransportMode = "air"
	TransportRail  TransportMode = "rail"
	TransportRoad  TransportMode = "road"
)

func (m TransportMode) Valid() bool {
	switch m {
	case TransportOcean, TransportAir, TransportRail, TransportRoad:
		return true
	}
	return false
}

// DedupReason names which cascade level rejected a candidate article.
type DedupReason string

const (
	DedupReasonURLExact      DedupReason = "url_exact"
	DedupReasonTitleSimHash  DedupReason = "title_simhash"
	DedupReasonContentMinHash DedupReason = "content_minhash"
)

func (r DedupReason) String() string { return string(r) }

// Channel is a Subscription's delivery transport.
type Channel string

const (
	ChannelPush    Channel = "push"
	ChannelWebhook Channel = "webhook"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelPush, ChannelWebhook:
		return true
	}
	return false
}

// Frequency controls how often a Subscription is evaluated for delivery.
// Only realtime subscriptions participate in the Dispatcher's immediate
// fan-out; daily/weekly subscriptions are consulted by an external batch
// digest process outside the core (see spec.md §1 Out of scope).
type Frequency string

const (
	FrequencyRealtime Frequency = "realtime"
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyRealtime, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// CandidateStatus tracks a SourceCandidate through the discovery lifecycle.
type CandidateStatus string

const (
	CandidateDiscovered CandidateStatus = "discovered"
	CandidateValidating CandidateStatus = "validating"
	CandidateValidated  CandidateStatus = "validated"
	CandidateApproved   CandidateStatus = "approved"
	CandidateRejected   CandidateStatus = "rejected"
)

// FetchStatus is the outcome of a single scheduled fetch attempt.
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchPartial FetchStatus = "partial"
	FetchFailed  FetchStatus = "failed"
)

// APIKeyRole is the permission tier granted to an API key.
type APIKeyRole string

const (
	RoleAdmin      APIKeyRole = "admin"
	RoleReader     APIKeyRole = "reader"
	RoleSubscriber APIKeyRole = "subscriber"
)

func (r APIKeyRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleReader, RoleSubscriber:
		return true
	}
	return false
}

package types

// Party is one participant in a conversation. Role is derived by heuristics,
// never taken from the source record.
type Party struct {
	Name         string `json:"name"`
	Tel          string `json:"tel"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Location     string `json:"location"`
	Organization string `json:"organization"`
}

// DialogTurn is one unit of conversation content attributed to a party by
// zero-based index into the party list. Order is conversation chronology.
type DialogTurn struct {
	Type     string  `json:"type"`
	Party    int     `json:"party"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Body     string  `json:"body"`
	MimeType string  `json:"mimetype"`
	URL      string  `json:"url"`
	Encoding string  `json:"encoding"`
}

// AnalysisEntry is a vendor annotation block carried through unmodified.
type AnalysisEntry struct {
	Type     string `json:"type"`
	Dialog   int    `json:"dialog"`
	Vendor   string `json:"vendor"`
	Schema   string `json:"schema"`
	Body     any    `json:"body"`
	Encoding string `json:"encoding"`
}

// Metrics are structural measures computed once per conversation.
// Agent/customer message counts follow the party-index-0-is-agent convention;
// the heuristic role resolver is only consulted for party info extraction.
type Metrics struct {
	TotalDuration    float64 `json:"total_duration"`
	MessageCount     int     `json:"message_count"`
	AgentMessages    int     `json:"agent_messages"`
	CustomerMessages int     `json:"customer_messages"`
	ConversationType string  `json:"conversation_type"`
	HasRecording     bool    `json:"has_recording"`
	HasAnalysis      bool    `json:"has_analysis"`
}

// ParsedConversation is the normalized form of one vCon record.
type ParsedConversation struct {
	ConversationID string          `json:"conversation_id"`
	Subject        string          `json:"subject"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
	Parties        []Party         `json:"parties"`
	Dialog         []DialogTurn    `json:"dialog"`
	Analysis       []AnalysisEntry `json:"analysis"`
	Metrics        Metrics         `json:"metrics"`
}

// CallDetails are the identity, structural and party-derived fields of one
// conversation before feature enrichment.
type CallDetails struct {
	ConversationID   string  `json:"conversation_id"`
	Subject          string  `json:"subject"`
	CreatedAt        string  `json:"created_at"`
	DurationSeconds  float64 `json:"duration_seconds"`
	MessageCount     int     `json:"message_count"`
	ConversationType string  `json:"conversation_type"`
	HasRecording     bool    `json:"has_recording"`
	AgentName        string  `json:"agent_name"`
	AgentEmail       string  `json:"agent_email"`
	CustomerName     string  `json:"customer_name"`
	CustomerPhone    string  `json:"customer_phone"`
	Location         string  `json:"location"`
	ConversationText string  `json:"conversation_text"`
}

type Sentiment struct {
	Polarity          float64 `json:"sentiment_polarity"`
	Subjectivity      float64 `json:"sentiment_subjectivity"`
	Label             string  `json:"sentiment_label"`
	SatisfactionScore float64 `json:"customer_satisfaction_score"`
}

type Topics struct {
	PrimaryTopic    string  `json:"primary_topic"`
	TopicConfidence float64 `json:"topic_confidence"`
	TopicScores     string  `json:"topic_scores"`
}

type Quality struct {
	CallQualityScore        float64 `json:"call_quality_score"`
	PositiveIndicatorsCount int     `json:"positive_indicators_count"`
	NegativeIndicatorsCount int     `json:"negative_indicators_count"`
}

type ScriptAdherence struct {
	AdherenceRate    float64 `json:"script_adherence_rate"`
	ElementsFollowed int     `json:"script_elements_followed"`
	ElementsTotal    int     `json:"script_elements_total"`
	Details          string  `json:"script_details"`
}

type Experience struct {
	SatisfactionIndicators    int `json:"customer_satisfaction_indicators"`
	DissatisfactionIndicators int `json:"customer_dissatisfaction_indicators"`
	LowEffortIndicators       int `json:"low_effort_indicators"`
	HighEffortIndicators      int `json:"high_effort_indicators"`
	NetSatisfactionScore      int `json:"net_satisfaction_score"`
	NetEffortScore            int `json:"net_effort_score"`
}

type Temporal struct {
	CallDate        string `json:"call_date"`
	CallTime        string `json:"call_time"`
	CallHour        int    `json:"call_hour"`
	CallDayOfWeek   string `json:"call_day_of_week"`
	CallMonth       string `json:"call_month"`
	CallYear        int    `json:"call_year"`
	IsWeekend       bool   `json:"is_weekend"`
	IsBusinessHours bool   `json:"is_business_hours"`
	CallQuarter     string `json:"call_quarter"`
}

// EnrichedRecord is one flat output row: call details plus every derived
// business feature. Every field is always populated; missing inputs produce
// the documented defaults, never holes.
type EnrichedRecord struct {
	CallDetails
	Sentiment
	Topics
	Quality
	ScriptAdherence
	Experience
	Temporal
	CallOutcome  string `json:"call_outcome"`
	UrgencyLevel string `json:"urgency_level"`
}

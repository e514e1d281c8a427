// Package vcon decodes vCon (Virtualized Conversation) records into
// normalized conversations. Every optional field degrades to a typed
// default; only structural damage (a record or sub-list that is not the
// expected JSON shape) fails a record.
package vcon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"vcon-insights/internal/lexicon"
	"vcon-insights/internal/types"
)

// ErrNotObject marks a batch element that is not a JSON object.
var ErrNotObject = errors.New("record is not a JSON object")

// Parser normalizes raw vCon records.
type Parser struct {
	lex   *lexicon.Lexicon
	roles *Resolver
}

func NewParser(lex *lexicon.Lexicon, roles *Resolver) *Parser {
	return &Parser{lex: lex, roles: roles}
}

// LoadFile reads a JSON file holding one vCon object or an array of them.
// Malformed JSON fails the whole file; per-record problems are left for
// Parse so a bad record cannot sink its batch.
func (p *Parser) LoadFile(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("%s: top-level JSON must be an object or array", path)
	}
}

// Parse maps one raw record into a ParsedConversation.
func (p *Parser) Parse(raw any) (types.ParsedConversation, error) {
	var conv types.ParsedConversation

	obj, ok := raw.(map[string]any)
	if !ok {
		return conv, ErrNotObject
	}

	conv.ConversationID = stringField(obj, "id", "")
	if conv.ConversationID == "" {
		conv.ConversationID = stringField(obj, "uuid", "")
	}
	conv.Subject = stringField(obj, "subject", "Unknown")
	conv.CreatedAt = stringField(obj, "created_at", "")
	conv.UpdatedAt = stringField(obj, "updated_at", "")

	vconJSON, err := objectField(obj, "vcon_json")
	if err != nil {
		return conv, recordError(conv.ConversationID, err)
	}

	partyItems, err := listField(vconJSON, "parties")
	if err != nil {
		return conv, recordError(conv.ConversationID, err)
	}
	if conv.Parties, err = p.extractParties(partyItems); err != nil {
		return conv, recordError(conv.ConversationID, err)
	}

	dialogItems, err := listField(vconJSON, "dialog")
	if err != nil {
		return conv, recordError(conv.ConversationID, err)
	}
	if conv.Dialog, err = extractDialog(dialogItems); err != nil {
		return conv, recordError(conv.ConversationID, err)
	}

	analysisItems, err := listField(vconJSON, "analysis")
	if err != nil {
		return conv, recordError(conv.ConversationID, err)
	}
	if conv.Analysis, err = extractAnalysis(analysisItems); err != nil {
		return conv, recordError(conv.ConversationID, err)
	}

	conv.Metrics = p.computeMetrics(conv.Dialog, conv.Analysis)
	return conv, nil
}

// CallDetails flattens a conversation into its business fields, resolving
// agent and customer identity through the role heuristics.
func (p *Parser) CallDetails(conv *types.ParsedConversation) types.CallDetails {
	details := types.CallDetails{
		ConversationID:   conv.ConversationID,
		Subject:          conv.Subject,
		CreatedAt:        conv.CreatedAt,
		DurationSeconds:  conv.Metrics.TotalDuration,
		MessageCount:     conv.Metrics.MessageCount,
		ConversationType: conv.Metrics.ConversationType,
		HasRecording:     conv.Metrics.HasRecording,
		AgentName:        "Unknown",
		CustomerName:     "Unknown",
		Location:         "Unknown",
		ConversationText: Transcript(conv),
	}
	if agent, ok := AgentInfo(conv.Parties); ok {
		details.AgentName = agent.Name
		details.AgentEmail = agent.Email
		details.Location = agent.Location
	}
	if customer, ok := CustomerInfo(conv.Parties); ok {
		details.CustomerName = customer.Name
		details.CustomerPhone = customer.Tel
	}
	return details
}

// Transcript renders the text turns as a speaker-prefixed script, one line
// per turn. Party 0 speaks as Agent, everyone else as Customer.
func Transcript(conv *types.ParsedConversation) string {
	var lines []string
	for _, turn := range conv.Dialog {
		if turn.Type != "text" || turn.Body == "" {
			continue
		}
		speaker := "Customer"
		if turn.Party == 0 {
			speaker = "Agent"
		}
		lines = append(lines, speaker+": "+turn.Body)
	}
	return strings.Join(lines, "\n")
}

func (p *Parser) extractParties(items []any) ([]types.Party, error) {
	parties := make([]types.Party, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parties[%d]: expected object, got %T", i, item)
		}
		party := types.Party{
			Name:         stringField(obj, "name", "Unknown"),
			Tel:          stringField(obj, "tel", ""),
			Email:        stringField(obj, "email", ""),
			Location:     stringField(obj, "location", ""),
			Organization: stringField(obj, "organization", ""),
		}
		party.Role = p.roles.Role(party)
		parties = append(parties, party)
	}
	return parties, nil
}

func extractDialog(items []any) ([]types.DialogTurn, error) {
	dialog := make([]types.DialogTurn, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("dialog[%d]: expected object, got %T", i, item)
		}
		dialog = append(dialog, types.DialogTurn{
			Type:     stringField(obj, "type", "text"),
			Party:    intField(obj, "party"),
			Start:    numberField(obj, "start"),
			Duration: numberField(obj, "duration"),
			Body:     stringField(obj, "body", ""),
			MimeType: stringField(obj, "mimetype", ""),
			URL:      stringField(obj, "url", ""),
			Encoding: stringField(obj, "encoding", "none"),
		})
	}
	return dialog, nil
}

func extractAnalysis(items []any) ([]types.AnalysisEntry, error) {
	analysis := make([]types.AnalysisEntry, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("analysis[%d]: expected object, got %T", i, item)
		}
		analysis = append(analysis, types.AnalysisEntry{
			Type:     stringField(obj, "type", ""),
			Dialog:   intField(obj, "dialog"),
			Vendor:   stringField(obj, "vendor", ""),
			Schema:   stringField(obj, "schema", ""),
			Body:     bodyField(obj),
			Encoding: stringField(obj, "encoding", "json"),
		})
	}
	return analysis, nil
}

func (p *Parser) computeMetrics(dialog []types.DialogTurn, analysis []types.AnalysisEntry) types.Metrics {
	m := types.Metrics{
		MessageCount: len(dialog),
		HasAnalysis:  len(analysis) > 0,
	}
	bodies := make([]string, 0, len(dialog))
	for _, turn := range dialog {
		m.TotalDuration += turn.Duration
		if turn.Party == 0 {
			m.AgentMessages++
		} else {
			m.CustomerMessages++
		}
		if turn.Type == "recording" {
			m.HasRecording = true
		}
		bodies = append(bodies, turn.Body)
	}
	m.ConversationType = p.classifyConversationType(strings.Join(bodies, " "))
	return m
}

// classifyConversationType scores each bucket by keyword presence and picks
// the highest. Ties keep the earlier bucket; zero hits everywhere yields
// "general".
func (p *Parser) classifyConversationType(text string) string {
	lowered := strings.ToLower(text)
	best := "general"
	bestCount := 0
	for _, bucket := range p.lex.ConversationTypes {
		count := 0
		for _, keyword := range bucket.Keywords {
			if strings.Contains(lowered, keyword) {
				count++
			}
		}
		if count > bestCount {
			best = bucket.Name
			bestCount = count
		}
	}
	return best
}

func recordError(id string, err error) error {
	if id == "" {
		id = "unknown"
	}
	return fmt.Errorf("conversation %s: %w", id, err)
}

// stringField returns the string at key, or fallback when the key is absent
// or holds a non-string value.
func stringField(m map[string]any, key, fallback string) string {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

func numberField(m map[string]any, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func intField(m map[string]any, key string) int {
	return int(numberField(m, key))
}

// objectField returns the object at key; absent or null degrades to an empty
// object, any other shape is a structural error.
func objectField(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %T", key, v)
	}
	return obj, nil
}

// listField returns the array at key; absent or null degrades to empty.
func listField(m map[string]any, key string) ([]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected array, got %T", key, v)
	}
	return list, nil
}

func bodyField(m map[string]any) any {
	if v, ok := m["body"]; ok && v != nil {
		return v
	}
	return map[string]any{}
}

// Package assistant answers free-form medicine questions. It extracts a
// likely medicine name from the question, enriches the prompt with the
// matching drug label when one is found, and delegates text generation to a
// completion model behind the narrow Responder interface. Model failures
// degrade to a canned fallback answer; Answer never fails.
package assistant

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/internal/medinfo"
	"github.com/MKhiriev/health-companion/models"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Reply sources.
const (
	SourceModel    = "model"
	SourceModelFDA = "model+fda"
	SourceFallback = "fallback"
)

// historyWindow limits how many trailing turns of the conversation are sent
// to the model (three exchanges).
const historyWindow = 6

// Turn is one message of the running conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Reply is the assistant's answer plus the label data it was grounded on,
// when any was found.
type Reply struct {
	Text     string           `json:"text"`
	Medicine *models.Medicine `json:"medicine,omitempty"`
	Source   string           `json:"source"`
}

// Responder generates the assistant's text. system carries the instruction
// prompt including any label context; turns end with the user's newest
// message.
type Responder interface {
	Respond(ctx context.Context, system string, turns []Turn) (string, error)
}

// MedicineFinder resolves a medicine name to its label entry.
type MedicineFinder interface {
	Search(ctx context.Context, term string) (*models.Medicine, error)
}

// Service is the medicine question-answering orchestrator.
type Service struct {
	meds      MedicineFinder
	responder Responder
	log       *logger.Logger
}

func NewService(meds MedicineFinder, responder Responder, log *logger.Logger) *Service {
	return &Service{meds: meds, responder: responder, log: log}
}

// Answer processes one user question. Label lookup failures are tolerated
// and only drop the label context; a model failure produces a fallback reply
// instead of an error.
func (s *Service) Answer(ctx context.Context, message string, history []Turn) Reply {
	var med *models.Medicine
	if name := extractMedicineName(message); name != "" {
		found, err := s.meds.Search(ctx, name)
		switch {
		case err == nil:
			med = found
		case !errors.Is(err, medinfo.ErrMedicineNotFound):
			s.log.Err(err).Str("func", "Service.Answer").Str("medicine", name).
				Msg("label lookup failed, answering without label context")
		}
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	turns := append(append([]Turn{}, history...), Turn{Role: RoleUser, Text: message})

	text, err := s.responder.Respond(ctx, buildSystemPrompt(med), turns)
	if err != nil {
		s.log.Err(err).Str("func", "Service.Answer").Msg("model call failed, serving fallback")
		return Reply{Text: fallbackMessage(message, err), Source: SourceFallback}
	}

	source := SourceModel
	if med != nil {
		source = SourceModelFDA
	}
	return Reply{Text: text, Medicine: med, Source: source}
}

// SuggestedQuestions proposes follow-up questions, tailored to the medicine
// currently in context when one is set.
func (s *Service) SuggestedQuestions(med *models.Medicine) []string {
	if med != nil {
		return []string{
			"What are the side effects of " + med.Name + "?",
			"How should I take " + med.Name + "?",
			"What are the warnings for " + med.Name + "?",
			"Can I take " + med.Name + " with other medications?",
			"Is " + med.Name + " safe for children?",
		}
	}

	return []string{
		"What is Ibuprofen used for?",
		"Tell me about Aspirin side effects",
		"How much Acetaminophen can I take?",
		"What are the warnings for Amoxicillin?",
		"Is Metformin safe during pregnancy?",
	}
}

var medicinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:what is|tell me about|info on|information about)\s+([a-z]+)`),
	regexp.MustCompile(`(?i)([a-z]+)\s+(?:dosage|side effects|uses|warnings|precautions)`),
	regexp.MustCompile(`(?i)(?:can i take|should i take|is)\s+([a-z]+)`),
	regexp.MustCompile(`(?i)^([a-z]+)$`),
}

var patternStopwords = wordSet("the", "what", "how", "when", "where", "why", "can", "should", "is", "are", "my", "me", "i")

var scanStopwords = wordSet("what", "tell", "about", "info", "information", "dosage", "side", "effects", "uses", "warnings", "take", "should", "can")

// extractMedicineName guesses which medicine a question is about. Question
// scaffolding patterns are tried first, then a plain word scan; common
// English words are filtered out. Returns "" when nothing plausible is
// found.
func extractMedicineName(query string) string {
	query = strings.TrimSpace(query)

	for _, p := range medicinePatterns {
		m := p.FindStringSubmatch(query)
		if len(m) < 2 {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if len(candidate) > 2 && !patternStopwords[strings.ToLower(candidate)] {
			return candidate
		}
	}

	for _, word := range strings.Fields(query) {
		if len(word) < 3 || !isAlpha(word) {
			continue
		}
		if !scanStopwords[strings.ToLower(word)] {
			return word
		}
	}

	return ""
}

// fallbackMessage builds the degraded answer when the model is unreachable.
// Urgent-sounding questions get redirected to emergency services rather than
// a retry suggestion.
func fallbackMessage(message string, err error) string {
	lower := strings.ToLower(message)

	for _, kw := range []string{"emergency", "urgent", "severe pain", "chest pain", "difficulty breathing"} {
		if strings.Contains(lower, kw) {
			return "This appears to be an urgent medical situation. Please call emergency services " +
				"immediately or visit your nearest emergency room. Don't wait for online advice in " +
				"emergency situations."
		}
	}

	if err != nil && strings.Contains(strings.ToLower(err.Error()), "rate limit") {
		return "I'm receiving a lot of requests right now. Please wait a moment and try again. " +
			"For urgent medical questions, please consult a healthcare professional directly."
	}

	return "I apologize, but I'm having trouble processing your request at the moment. Please try " +
		"again in a moment, or consult with a healthcare professional for medical advice."
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

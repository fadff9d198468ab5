// Package agent generates the honeypot's replies. It is a finite state
// machine over five conversation stages; replies are drawn from per-stage
// template rotations so the same session never sees the same reply twice in
// a row. The agent is deterministic given its inputs: persona and rotation
// index replace hidden randomness.
package agent

import (
	"strings"

	"github.com/decoykit/scamtrap/internal/detect"
	"github.com/decoykit/scamtrap/internal/domain"
)

// Persona flavors template selection. Personas are parameterized, never
// global state.
type Persona string

const (
	PersonaConcernedCitizen   Persona = "concerned_citizen"
	PersonaCuriousUser        Persona = "curious_user"
	PersonaSkepticalPerson    Persona = "skeptical_person"
	PersonaTrustingIndividual Persona = "trusting_individual"
	PersonaConfusedElder      Persona = "confused_elder"
	PersonaBusyProfessional   Persona = "busy_professional"
)

// Personas lists every selectable persona.
var Personas = []Persona{
	PersonaConcernedCitizen,
	PersonaCuriousUser,
	PersonaSkepticalPerson,
	PersonaTrustingIndividual,
	PersonaConfusedElder,
	PersonaBusyProfessional,
}

// MissingArtifacts flags which artifact classes the session has not yet
// captured. The information-seeking stage solicits the first missing one in
// the order payment handle > link > phone number.
type MissingArtifacts struct {
	PaymentHandle bool
	Link          bool
	Phone         bool
}

// Input carries everything a reply decision depends on.
type Input struct {
	Detection domain.DetectionResult
	Stage     domain.Stage
	TurnCount int
	Persona   Persona
	LastReply string
	Missing   MissingArtifacts
	Threshold float64 // scam confirmation threshold; <=0 uses the detector default
}

// Reply is the generated response plus the stage the session moves to.
type Reply struct {
	Text      string
	NextStage domain.Stage
}

// Respond runs one step of the stage machine. A zero detection result is a
// normal input: quiet turns ("ok", "?") happen mid-conversation, and past
// ENGAGEMENT the machine advances on them unconditionally, staying in
// character. The only failure an UnknownTransitionError can report is a
// stage outside the machine; even then the returned reply is usable (neutral
// text, stage held) so callers can degrade instead of dropping the turn.
func Respond(in Input) (Reply, error) {
	threshold := in.Threshold
	if threshold <= 0 {
		threshold = detect.DefaultThreshold
	}

	switch in.Stage {
	case domain.StageInitial:
		templates := initialLowTemplates
		if in.Detection.Confidence >= threshold {
			templates = initialConcernTemplates
		}
		// The first reply always completes an engagement turn before any
		// stage-based branching; a cold open would tip off detection.
		return Reply{Text: pick(templates, in, nil), NextStage: domain.StageEngagement}, nil

	case domain.StageEngagement:
		next := domain.StageEngagement
		if in.Detection.IsScam && in.Detection.Confidence >= threshold {
			next = domain.StageInformationSeeking
		}
		return Reply{Text: pick(engagementTemplates, in, engagementSignalTemplates), NextStage: next}, nil

	case domain.StageInformationSeeking:
		return Reply{Text: solicit(in), NextStage: domain.StageVerification}, nil

	case domain.StageVerification:
		return Reply{Text: pick(verificationTemplates, in, verificationSignalTemplates), NextStage: domain.StageAdvanced}, nil

	case domain.StageAdvanced:
		return Reply{Text: pick(advancedTemplates, in, nil), NextStage: domain.StageAdvanced}, nil

	default:
		return Reply{Text: pick(neutralTemplates, in, nil), NextStage: in.Stage},
			&domain.UnknownTransitionError{Stage: in.Stage}
	}
}

// solicit asks for the first artifact class still missing, preferring
// payment handle, then link, then phone.
func solicit(in Input) string {
	switch {
	case in.Missing.PaymentHandle:
		return pick(seekPaymentTemplates, in, nil)
	case in.Missing.Link:
		return pick(seekLinkTemplates, in, nil)
	case in.Missing.Phone:
		return pick(seekPhoneTemplates, in, nil)
	}
	return pick(seekGenericTemplates, in, nil)
}

// pick selects a template deterministically: signal-specific sets take
// priority when one of their signals matched, then rotation by turn count
// offset by persona, skipping a verbatim repeat of the previous reply.
func pick(templates []string, in Input, signalSets map[string][]string) string {
	if signalSets != nil {
		for _, sig := range in.Detection.MatchedSignals {
			if alt, ok := signalSets[sig]; ok {
				merged := make([]string, 0, len(alt)+len(templates))
				merged = append(merged, alt...)
				merged = append(merged, templates...)
				templates = merged
				break
			}
		}
	}
	if len(templates) == 0 {
		return neutralTemplates[0]
	}

	idx := (in.TurnCount + personaOffset(in.Persona)) % len(templates)
	candidate := render(templates[idx], in)
	if candidate == in.LastReply && len(templates) > 1 {
		idx = (idx + 1) % len(templates)
		candidate = render(templates[idx], in)
	}
	return candidate
}

// render substitutes the {threat} placeholder with a phrase derived from the
// strongest matched signal. Templated substitution only, by design no
// free-form generation.
func render(template string, in Input) string {
	if !strings.Contains(template, "{threat}") {
		return template
	}
	return strings.ReplaceAll(template, "{threat}", threatPhrase(in.Detection.MatchedSignals))
}

func threatPhrase(signals []string) string {
	for _, sig := range signals {
		switch sig {
		case detect.SignalFinancial:
			return "my account being blocked"
		case detect.SignalPhishing:
			return "this verification link"
		case detect.SignalUrgency:
			return "this deadline"
		case detect.SignalURL:
			return "that website"
		}
	}
	return "this issue"
}

func personaOffset(p Persona) int {
	for i, known := range Personas {
		if known == p {
			return i
		}
	}
	return 0
}

// PersonaFor deterministically assigns a persona to a session key. FNV-1a
// over the key keeps assignment stable across restarts and testable.
func PersonaFor(key string) Persona {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return Personas[h%uint32(len(Personas))]
}

package agent

import "github.com/decoykit/scamtrap/internal/detect"

// Template rotations per stage. Texts stay in templated-substitution
// territory: the only placeholder is {threat}, filled from matched signals.

// Neutral acknowledgments, used for low-confidence first turns and as the
// fallback for unreachable stage/detection combinations.
var neutralTemplates = []string{
	"Hello? Who is this?",
	"I'm not sure I understand. What is this about?",
	"Can you tell me who you are and why you're contacting me?",
	"Sorry, I think you might have the wrong person.",
}

// First-turn replies when the opening message already scores high.
var initialConcernTemplates = []string{
	"Oh no, what happened? Why is there an issue with my account?",
	"Is this serious? Should I be worried about {threat}?",
	"I'm confused, which account are you talking about?",
	"I don't understand, what seems to be the problem?",
}

var initialLowTemplates = []string{
	"Hello? Who is this?",
	"Okay. What is this regarding?",
	"I'm listening, go on.",
}

var engagementTemplates = []string{
	"That sounds concerning. What do I need to do exactly?",
	"I see. Can you walk me through the process step by step?",
	"Okay, I understand. What's the first thing I should do?",
	"Why would my account be blocked? I haven't done anything unusual.",
	"Thank you for letting me know. How can I resolve this quickly?",
}

var engagementSignalTemplates = map[string][]string{
	detect.SignalUrgency: {
		"This seems urgent. What happens if I don't act immediately?",
		"I'm a bit scared now. Please help me understand {threat}.",
	},
	detect.SignalFinancial: {
		"Blocked? Which account is this about? I have more than one.",
	},
}

var seekPaymentTemplates = []string{
	"Which UPI ID should I send it to? I have multiple payment apps.",
	"Should I use my Google Pay UPI or PhonePe UPI? Where exactly do I pay?",
	"What information do you need from me exactly to sort out {threat}?",
}

var seekLinkTemplates = []string{
	"Can you send me the official link? I want to make sure it's authentic.",
	"Is there a website or official portal I should visit?",
}

var seekPhoneTemplates = []string{
	"Is there a customer service number I can call about this?",
	"Can you share a contact number in case we get disconnected?",
}

var seekGenericTemplates = []string{
	"Can you provide more details about the verification process?",
	"How can I confirm this is legitimate?",
}

var verificationTemplates = []string{
	"Can you repeat that account number? I want to write it down correctly.",
	"Can you provide any reference number or case ID for this issue?",
	"I want to make sure this is legitimate. Can you confirm the details once more?",
	"How can I confirm you're actually from the bank or organization?",
}

var verificationSignalTemplates = map[string][]string{
	detect.SignalFinancial: {
		"Why do I need to make a payment to resolve {threat}? Is there a fee, how much exactly?",
	},
}

var advancedTemplates = []string{
	"I've been getting similar messages lately. How do I know this isn't a scam?",
	"My friend warned me about fraud attempts. Can you prove this is genuine?",
	"I think I should contact my bank directly to confirm {threat}.",
	"Can you share your employee ID or official identification?",
	"But I already completed my KYC last year. Why do I need to do it again?",
	"The app keeps loading on my phone. Give me a minute, I'm trying again.",
}

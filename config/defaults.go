package config

// Default returns the built-in configuration. Values mirror the tuned
// production settings for the BFSI assistant; a YAML file and environment
// variables can override any of them.
func Default() *Config {
	return &Config{
		PIIPatterns: map[string]PIIPattern{
			// Fixed-format identifiers first so a PAN or Aadhaar is never
			// re-matched by the generic account-number pattern.
			"pan_card": {
				Regex:        `\b[A-Z]{5}[0-9]{4}[A-Z]\b`,
				Severity:     "critical",
				MaskStrategy: "full_mask",
				Priority:     0,
			},
			"aadhaar": {
				Regex:        `\b\d{4}\s?\d{4}\s?\d{4}\b`,
				Severity:     "critical",
				MaskStrategy: "full_mask",
				Priority:     1,
			},
			"credit_card": {
				Regex:        `\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`,
				Severity:     "critical",
				MaskStrategy: "last_4_digits",
				Priority:     2,
			},
			"phone": {
				Regex:        `\b[6-9]\d{9}\b`,
				Severity:     "high",
				MaskStrategy: "last_4_digits",
				Priority:     3,
			},
			"email": {
				Regex:        `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
				Severity:     "high",
				MaskStrategy: "domain_only",
				Priority:     4,
			},
			"account_number": {
				Regex:        `\b\d{9,18}\b`,
				Severity:     "high",
				MaskStrategy: "last_4_digits",
				Priority:     5,
			},
		},
		Validation: ValidationConfig{
			MinLength: 1,
			MaxLength: 1000,
			InjectionPatterns: []string{
				`ignore\s+(all\s+)?(previous\s+)?instructions?`,
				`disregard\s+system`,
				`you\s+are\s+now`,
			},
			BlockedSubstrings: []string{"<script", "javascript:"},
		},
		Normalization: NormalizationConfig{
			Lowercase:          true,
			CollapseWhitespace: true,
			ExpandContractions: true,
		},
		Context: ContextConfig{
			MaxHistory:            5,
			SessionTimeoutMinutes: 30,
		},
		Intent: IntentConfig{
			Intents:    defaultIntents(),
			Categories: defaultCategories(),
		},
		Guardrails: GuardrailsConfig{
			Enabled:          true,
			BlockOnPII:       true,
			CriticalPIITypes: []string{"pan_card", "aadhaar", "credit_card"},
			BlockOnInjection: true,
			RateLimit: RateLimitConfig{
				Enabled:       true,
				MaxRequests:   10,
				WindowSeconds: 60,
			},
		},
		Routing: RoutingConfig{
			Tier1MinConfidence:  0.85,
			Tier1MinSimilarity:  0.90,
			Tier2MinConfidence:  0.60,
			Tier2MaxConfidence:  0.85,
			EscalationThreshold: 0.30,
			Tier1Intents: []string{
				"emi_details", "emi_schedule", "payment_methods",
				"loan_documents", "policy_information",
			},
			Tier2Intents: []string{
				"loan_eligibility", "loan_application_status", "emi_missed",
				"emi_bounced", "payment_failure", "transaction_status",
				"account_locked", "account_statement", "account_balance",
				"update_mobile", "update_address", "update_email",
				"premium_payment", "claim_status",
			},
			Tier3Intents: []string{"complaint", "speak_to_manager", "not_satisfied"},
		},
		Safety: SafetyConfig{
			SafetyEnabled:     true,
			ComplianceEnabled: true,
			ProhibitedPatterns: []ProhibitedPattern{
				{
					Name:     "specific_amount",
					Pattern:  `(?:INR|Rs\.?|₹)\s*\d[\d,]*(?:\.\d+)?`,
					Message:  "Contains a specific currency amount",
					Severity: "critical",
				},
				{
					Name:     "interest_rate",
					Pattern:  `\d+(?:\.\d+)?\s*%\s*(?:interest|rate|p\.?a\.?)`,
					Message:  "Contains a specific interest rate",
					Severity: "critical",
				},
				{
					Name:     "account_number",
					Pattern:  `\b\d{9,18}\b`,
					Message:  "Contains an account-shaped number",
					Severity: "critical",
				},
			},
			HarmfulKeywords: []KeywordCategory{
				{
					Name:     "credential_phishing",
					Keywords: []string{"your otp", "your cvv", "your pin number"},
					Severity: "critical",
				},
				{
					Name:     "unauthorized_guarantee",
					Keywords: []string{"guaranteed approval", "100% approval"},
					Severity: "high",
				},
			},
			Disclaimers: map[string]string{
				"investment": "Investments are subject to market risks. Please read all scheme documents carefully.",
				"insurance":  "Insurance is the subject matter of solicitation. Refer to policy documents for details.",
			},
			Output: OutputValidationConfig{
				MinLength:    10,
				MaxLength:    500,
				BlockGeneric: []string{"i don't know", "i am not sure", "no information"},
			},
			FallbackMessage: "I apologize, but I cannot provide that information. Please contact customer care for assistance.",
		},
		Tiers: TiersConfig{
			KB: KBConfig{
				MinScore:        0.78,
				ConfidenceBoost: 0.05,
			},
			SLM: SLMConfig{
				Confidence:   0.75,
				Instructions: defaultInstructions(),
			},
			RAG: RAGConfig{
				Enabled:           true,
				AcceptThreshold:   0.5,
				TopK:              3,
				ScoreThreshold:    0.70,
				EscalationMessage: "I'll connect you with a specialist who can help you with this. Please stay on the line.",
			},
		},
		Search: SearchConfig{
			TopK:           5,
			ScoreThreshold: 0.70,
		},
		OpenAI: OpenAIConfig{
			BaseURL:           "",
			EmbeddingModel:    "text-embedding-3-small",
			ChatModel:         "gpt-4o-mini",
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Weaviate: WeaviateConfig{
			Enabled:   false,
			Host:      "localhost:8080",
			Scheme:    "http",
			ClassName: "BfsiIntent",
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "finassist",
			Username:     "postgres",
			Password:     "",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxLifetime:  300,
			CleanupHours: 24,
		},
		Server: ServerConfig{
			Port:                  ":8090",
			RequestTimeoutSeconds: 30,
		},
		EmbeddingCacheSize: 10000,
	}
}

// defaultIntents lists every intent with its keywords. Order is the
// classification tie-break order.
func defaultIntents() []IntentKeywords {
	return []IntentKeywords{
		// Loans
		{Name: "loan_eligibility", Keywords: []string{"loan", "eligible", "eligibility", "qualify", "apply"}},
		{Name: "loan_application_status", Keywords: []string{"loan", "application", "status", "approved", "pending", "rejected"}},
		{Name: "loan_documents", Keywords: []string{"loan", "documents", "papers", "required", "needed"}},

		// EMI
		{Name: "emi_details", Keywords: []string{"emi", "amount", "installment", "monthly", "payment"}},
		{Name: "emi_schedule", Keywords: []string{"emi", "schedule", "due", "dates", "when"}},
		{Name: "emi_missed", Keywords: []string{"emi", "missed", "late", "overdue", "pending"}},
		{Name: "emi_bounced", Keywords: []string{"emi", "bounced", "failed", "returned", "bounce"}},

		// Payments
		{Name: "payment_failure", Keywords: []string{"payment", "failed", "failure", "unsuccessful", "declined"}},
		{Name: "transaction_status", Keywords: []string{"transaction", "status", "payment", "transfer"}},
		{Name: "payment_methods", Keywords: []string{"payment", "method", "options", "how", "pay"}},

		// Accounts
		{Name: "account_locked", Keywords: []string{"account", "locked", "blocked", "frozen", "suspended"}},
		{Name: "account_statement", Keywords: []string{"statement", "account", "transactions", "history"}},
		{Name: "account_balance", Keywords: []string{"balance", "account", "amount", "available"}},

		// Profile updates
		{Name: "update_mobile", Keywords: []string{"update", "change", "mobile", "number", "phone"}},
		{Name: "update_address", Keywords: []string{"update", "change", "address", "location"}},
		{Name: "update_email", Keywords: []string{"update", "change", "email", "mail"}},

		// Insurance / policy
		{Name: "policy_information", Keywords: []string{"policy", "policies", "insurance", "information", "details", "bank policies", "terms and conditions"}},
		{Name: "premium_payment", Keywords: []string{"premium", "payment", "insurance", "pay"}},
		{Name: "claim_status", Keywords: []string{"claim", "status", "insurance", "submitted"}},

		// Escalation
		{Name: "complaint", Keywords: []string{"complaint", "complain", "issue", "problem"}},
		{Name: "speak_to_manager", Keywords: []string{"manager", "supervisor", "senior", "escalate"}},
		{Name: "not_satisfied", Keywords: []string{"not satisfied", "unhappy", "disappointed"}},
	}
}

func defaultCategories() []IntentCategory {
	return []IntentCategory{
		{Name: "loan", Intents: []string{"loan_eligibility", "loan_application_status", "loan_documents"}},
		{Name: "emi", Intents: []string{"emi_details", "emi_schedule", "emi_missed", "emi_bounced"}},
		{Name: "payment", Intents: []string{"payment_failure", "transaction_status", "payment_methods"}},
		{Name: "account", Intents: []string{"account_locked", "account_statement", "account_balance"}},
		{Name: "profile", Intents: []string{"update_mobile", "update_address", "update_email"}},
		{Name: "insurance", Intents: []string{"policy_information", "premium_payment", "claim_status"}},
		{Name: "escalation", Intents: []string{"complaint", "speak_to_manager", "not_satisfied"}},
	}
}

// defaultInstructions maps intents to the instruction phrasing the tier-2
// model was fine-tuned on. The wording must match the training data.
func defaultInstructions() map[string]string {
	return map[string]string{
		"loan_eligibility":        "Provide information about loan eligibility criteria",
		"loan_application_status": "Check loan application status",
		"loan_documents":          "Provide information about loan documents required",
		"emi_details":             "Provide EMI details",
		"emi_schedule":            "Provide EMI schedule information",
		"emi_missed":              "Provide information about missed EMI",
		"emi_bounced":             "Provide information about bounced EMI",
		"payment_failure":         "Provide information about payment failure",
		"transaction_status":      "Check transaction status",
		"payment_methods":         "Provide information about payment methods",
		"account_locked":          "Provide information about account locked",
		"account_statement":       "Provide account statement information",
		"account_balance":         "Provide information about account balance",
		"update_mobile":           "Provide information about updating mobile number",
		"update_address":          "Provide information about updating address",
		"update_email":            "Provide information about updating email",
		"policy_information":      "Provide information about policy and terms",
		"premium_payment":         "Provide information about premium payment",
		"claim_status":            "Check insurance claim status",
		"complaint":               "Handle complaint",
		"speak_to_manager":        "Handle request to speak to manager",
		"not_satisfied":           "Handle customer not satisfied",
	}
}

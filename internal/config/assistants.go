package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssistantEntry describes one assistant the relay can route conversations
// to. Entries are loaded once at startup and become the immutable registry.
type AssistantEntry struct {
	Key            string   `yaml:"key"`
	Name           string   `yaml:"name"`
	WelcomeMessage string   `yaml:"welcome_message"`
	Placeholder    string   `yaml:"placeholder"`
	Color          string   `yaml:"color"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RequiresAuth   bool     `yaml:"requires_auth"`
	// AssistantID is the remote assistant identifier. It is never exposed
	// to widget clients.
	AssistantID    string   `yaml:"assistant_id"`
	AssistantIDEnv string   `yaml:"assistant_id_env"`
}

type assistantsFile struct {
	Assistants []AssistantEntry `yaml:"assistants"`
}

// LoadAssistantEntries reads assistant definitions from the given YAML file,
// or returns the built-in defaults when no file is configured.
func LoadAssistantEntries(path string) ([]AssistantEntry, error) {
	entries := defaultAssistantEntries()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var file assistantsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if len(file.Assistants) == 0 {
			return nil, fmt.Errorf("%s defines no assistants", path)
		}
		entries = file.Assistants
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		entry := &entries[i]
		if strings.TrimSpace(entry.Key) == "" {
			return nil, fmt.Errorf("assistant entry %d has no key", i)
		}
		if seen[entry.Key] {
			return nil, fmt.Errorf("duplicate assistant key %q", entry.Key)
		}
		seen[entry.Key] = true

		// Environment indirection lets deployments rotate remote assistant
		// IDs without editing the registry file.
		if entry.AssistantIDEnv != "" {
			if v := os.Getenv(entry.AssistantIDEnv); v != "" {
				entry.AssistantID = v
			}
		}
		if strings.TrimSpace(entry.AssistantID) == "" {
			return nil, fmt.Errorf("assistant %q has no remote assistant id", entry.Key)
		}
	}

	return entries, nil
}

func defaultAssistantEntries() []AssistantEntry {
	return []AssistantEntry{
		{
			Key:            "customer-support",
			Name:           "Customer Support",
			WelcomeMessage: "👋 Hello! I'm here to help with any questions or issues you have. How can I assist you today?",
			Placeholder:    "Type your message...",
			Color:          "#dc2626",
			AllowedOrigins: []string{"localhost", "yourcompany.com", "support.yourcompany.com"},
			AssistantID:    "asst_customer_support_123",
			AssistantIDEnv: "ASSISTANT_CUSTOMER_SUPPORT",
		},
		{
			Key:            "sales",
			Name:           "Sales Assistant",
			WelcomeMessage: "💼 Hi there! I'm here to help you learn about our products and find the perfect solution for your needs. What can I help you with today?",
			Placeholder:    "Ask about our products...",
			Color:          "#059669",
			AllowedOrigins: []string{"localhost", "yourcompany.com", "sales.yourcompany.com"},
			AssistantID:    "asst_sales_456",
			AssistantIDEnv: "ASSISTANT_SALES",
		},
		{
			Key:            "hr-internal",
			Name:           "HR Assistant",
			WelcomeMessage: "🏢 Hello team member! I'm here to help with HR-related questions, policies, benefits, and workplace support. How can I assist you today?",
			Placeholder:    "Ask about HR policies, benefits...",
			Color:          "#7c3aed",
			AllowedOrigins: []string{"localhost", "internal.yourcompany.com"},
			RequiresAuth:   true,
			AssistantID:    "asst_hr_789",
			AssistantIDEnv: "ASSISTANT_HR_INTERNAL",
		},
		{
			Key:            "technical-support",
			Name:           "Technical Support",
			WelcomeMessage: "🔧 Technical support here! I'm ready to help you troubleshoot issues, resolve technical problems, and provide solutions. What technical issue can I help you with?",
			Placeholder:    "Describe your technical issue...",
			Color:          "#ea580c",
			AllowedOrigins: []string{"localhost", "support.yourcompany.com", "docs.yourcompany.com"},
			AssistantID:    "asst_tech_101",
			AssistantIDEnv: "ASSISTANT_TECHNICAL_SUPPORT",
		},
	}
}

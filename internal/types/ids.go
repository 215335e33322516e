package types

import "github.com/google/uuid"

// NewConfigurationID generates a UUIDv7 configuration identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewConfigurationID() ConfigurationID {
	return ConfigurationID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// ParseConfigurationID validates and converts a string to ConfigurationID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseConfigurationID(s string) (ConfigurationID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ConfigurationID(s), nil
}

// ParseRuleID validates and converts a string to RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RuleID(s), nil
}

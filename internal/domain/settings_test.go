package domain

import "testing"

func validSettings() *AutomationSettings {
	return &AutomationSettings{
		Enabled:     true,
		Frequency:   FrequencyWeekly,
		HourOfDay:   3,
		BatchSize:   10,
		RetryFailed: true,
		MaxRetries:  3,
	}
}

func TestAutomationSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AutomationSettings)
		wantErr bool
	}{
		{"valid", func(*AutomationSettings) {}, false},
		{"unknown frequency", func(s *AutomationSettings) { s.Frequency = "hourly" }, true},
		{"empty frequency", func(s *AutomationSettings) { s.Frequency = "" }, true},
		{"hour below range", func(s *AutomationSettings) { s.HourOfDay = -1 }, true},
		{"hour above range", func(s *AutomationSettings) { s.HourOfDay = 24 }, true},
		{"midnight is valid", func(s *AutomationSettings) { s.HourOfDay = 0 }, false},
		{"last hour is valid", func(s *AutomationSettings) { s.HourOfDay = MaxHourOfDay }, false},
		{"batch size zero", func(s *AutomationSettings) { s.BatchSize = 0 }, true},
		{"batch size over cap", func(s *AutomationSettings) { s.BatchSize = MaxBatchSize + 1 }, true},
		{"batch size at cap", func(s *AutomationSettings) { s.BatchSize = MaxBatchSize }, false},
		{"retries zero", func(s *AutomationSettings) { s.MaxRetries = 0 }, true},
		{"retries over cap", func(s *AutomationSettings) { s.MaxRetries = MaxMaxRetries + 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)

			err := s.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings failed validation: %v", err)
	}
	if s.Enabled {
		t.Error("default settings should start disabled")
	}
	if s.NextScheduledRun != nil {
		t.Error("default settings should not carry a scheduled run")
	}
}

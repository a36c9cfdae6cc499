package config

import "testing"

func validConfig() *Config {
	return NewConfig("/tmp/out", "/tmp/log")
}

func TestNewConfigValidatesCleanly(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateStrengthBounds(t *testing.T) {
	c := validConfig()
	c.Strength = MinStrength - 0.01
	if err := c.Validate(); err == nil {
		t.Error("expected error for strength below MinStrength")
	}

	c = validConfig()
	c.Strength = MaxStrength + 0.01
	if err := c.Validate(); err == nil {
		t.Error("expected error for strength above MaxStrength")
	}

	c = validConfig()
	c.Strength = MinStrength
	if err := c.Validate(); err != nil {
		t.Errorf("MinStrength itself should be valid, got %v", err)
	}
}

func TestValidateRedundancy(t *testing.T) {
	c := validConfig()
	c.Redundancy = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for redundancy < 1")
	}
}

func TestValidateCoefficientPosition(t *testing.T) {
	tests := []struct {
		row, col int
		wantErr  bool
	}{
		{0, 0, false},
		{7, 7, false},
		{-1, 3, true},
		{4, 8, true},
		{8, 0, true},
	}
	for _, tt := range tests {
		c := validConfig()
		c.CoeffRow, c.CoeffCol = tt.row, tt.col
		err := c.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("(%d,%d): expected error, got nil", tt.row, tt.col)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("(%d,%d): unexpected error %v", tt.row, tt.col, err)
		}
	}
}

func TestValidateCarrierEnum(t *testing.T) {
	c := validConfig()
	c.Carrier = Carrier("rgb")
	if err := c.Validate(); err == nil {
		t.Error("expected error for an unrecognized carrier")
	}

	c = validConfig()
	c.Carrier = CarrierYCrCb
	if err := c.Validate(); err != nil {
		t.Errorf("CarrierYCrCb should be valid, got %v", err)
	}
}

func TestValidatePayloadMax(t *testing.T) {
	c := validConfig()
	c.PayloadMax = -1
	if err := c.Validate(); err == nil {
		t.Error("expected error for negative payload_max")
	}
}

func TestValidateWorkersAndQueueCapacity(t *testing.T) {
	c := validConfig()
	c.Workers = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for workers < 1")
	}

	c = validConfig()
	c.QueueCapacity = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for queue_capacity < 1")
	}

	c = validConfig()
	c.ProgressEveryNFrames = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for progress_every_n_frames < 1")
	}
}

func TestCarrierChannels(t *testing.T) {
	if got := CarrierY.Channels(); len(got) != 1 || got[0] != "Y" {
		t.Errorf("CarrierY.Channels() = %v, want [Y]", got)
	}
	if got := CarrierYCrCb.Channels(); len(got) != 3 {
		t.Errorf("CarrierYCrCb.Channels() = %v, want 3 channels", got)
	}
}

func TestGetTempDirFallsBackToOutputDir(t *testing.T) {
	c := validConfig()
	if got := c.GetTempDir(); got != c.OutputDir {
		t.Errorf("GetTempDir() = %q, want fallback to OutputDir %q", got, c.OutputDir)
	}
	c.TempDir = "/tmp/custom"
	if got := c.GetTempDir(); got != "/tmp/custom" {
		t.Errorf("GetTempDir() = %q, want /tmp/custom", got)
	}
}

func TestAutoWorkerCountWithinBounds(t *testing.T) {
	n := AutoWorkerCount()
	if n < 1 || n > MaxWorkers {
		t.Errorf("AutoWorkerCount() = %d, want between 1 and %d", n, MaxWorkers)
	}
}

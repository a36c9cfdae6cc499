package estimate

import "testing"

func TestResolutionFactorTiers(t *testing.T) {
	tests := []struct {
		width, height int
		want          float64
	}{
		{640, 480, 0.5},
		{1280, 720, 1.0},
		{1920, 1080, 1.5},
		{3840, 2160, 3.0},
		{7680, 4320, 5.0},
		{480, 640, 0.5}, // portrait: shorter side wins
	}
	for _, tt := range tests {
		if got := resolutionFactor(tt.width, tt.height); got != tt.want {
			t.Errorf("resolutionFactor(%d,%d) = %v, want %v", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestPayloadFactorCaps(t *testing.T) {
	tests := []struct {
		payloadLen int
		want       float64
	}{
		{0, 0.5},
		{16, 1.0},
		{32, 1.5},
		{64, 2.0},
		{1000, 2.0}, // capped at 0.5+1.5
	}
	for _, tt := range tests {
		if got := payloadFactor(tt.payloadLen); got != tt.want {
			t.Errorf("payloadFactor(%d) = %v, want %v", tt.payloadLen, got, tt.want)
		}
	}
}

func TestPredictConfidenceReflectsMetadataCompleteness(t *testing.T) {
	complete := Predict(900, 1920, 1080, 16, true)
	if complete.Confidence != 0.7 {
		t.Errorf("Confidence (complete metadata) = %v, want 0.7", complete.Confidence)
	}

	incomplete := Predict(900, 1920, 1080, 16, false)
	if incomplete.Confidence != 0.4 {
		t.Errorf("Confidence (incomplete metadata) = %v, want 0.4", incomplete.Confidence)
	}
}

func TestPredictSecondsFormula(t *testing.T) {
	// frameCount=300, 720p (rf=1.0), payloadLen=0 (pf=0.5)
	// seconds = 300/30 * 1.0 * 0.5 = 5
	got := Predict(300, 1280, 720, 0, true)
	if got.EstimatedSeconds != 5 {
		t.Errorf("EstimatedSeconds = %v, want 5", got.EstimatedSeconds)
	}
}

package cli

import (
	"strings"
	"testing"

	"github.com/sentra-labs/installer/internal/manifest"
)

func TestMatchInstance(t *testing.T) {
	instances := map[string]manifest.InstanceRef{
		"server":        {Location: "server", Name: "Sentra Server"},
		"sensorClientX": {Location: "clients/x", Name: "Sensor Client X"},
	}

	tests := []struct {
		wanted  string
		wantID  string
		wantErr bool
	}{
		{"server", "server", false},
		{"SERVER", "server", false},
		{"sensorclientx", "sensorClientX", false},
		{"nonsense", "", true},
	}

	for _, tt := range tests {
		got, err := matchInstance(instances, tt.wanted)
		if (err != nil) != tt.wantErr {
			t.Errorf("matchInstance(%q) error = %v, wantErr %v", tt.wanted, err, tt.wantErr)
			continue
		}
		if got != tt.wantID {
			t.Errorf("matchInstance(%q) = %q, want %q", tt.wanted, got, tt.wantID)
		}
	}
}

func TestMatchInstance_ErrorListsAvailable(t *testing.T) {
	instances := map[string]manifest.InstanceRef{
		"alpha": {},
		"beta":  {},
	}

	_, err := matchInstance(instances, "gamma")
	if err == nil {
		t.Fatal("expected error for unknown instance")
	}
	if !strings.Contains(err.Error(), "alpha, beta") {
		t.Errorf("error %q should list available instances in order", err)
	}
}

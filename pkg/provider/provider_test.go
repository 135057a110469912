package provider

import (
	"testing"

	"agentforce/pkg/config"
	"agentforce/pkg/provider/agentforce"
	"agentforce/pkg/provider/simulated"
)

func TestNewDefaultsToAgentforceClient(t *testing.T) {
	client, err := New(config.AgentforceConfig{
		InstanceURL: "https://org.my.salesforce.com",
		AgentID:     "agent",
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := client.(*agentforce.Client); !ok {
		t.Fatalf("expected *agentforce.Client, got %T", client)
	}
}

func TestNewReturnsSimulatedClient(t *testing.T) {
	client, err := New(config.AgentforceConfig{SimulationMode: true}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := client.(*simulated.Client); !ok {
		t.Fatalf("expected *simulated.Client, got %T", client)
	}
}

func TestNewReturnsErrorWithoutInstance(t *testing.T) {
	if _, err := New(config.AgentforceConfig{AgentID: "agent"}, nil); err == nil {
		t.Fatal("expected error for missing instance url")
	}
}

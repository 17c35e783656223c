package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/stocksight/data-gateway/pkg/cache"
	_ "github.com/stocksight/data-gateway/pkg/client"
	_ "github.com/stocksight/data-gateway/pkg/ratelimit"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

// TestCollectorsRegister verifies the instrumented packages register their
// collectors without name collisions.
func TestCollectorsRegister(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "gateway_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected at least one gateway_ metric family to be registered")
	}
}

package memory

import (
	"testing"

	"github.com/machi-events/eventfinder/internal/store"
	"github.com/machi-events/eventfinder/internal/store/storetest"
)

func TestMemoryStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

package challenges

import (
	"decryptzone/challenge"
	"decryptzone/service"
)

// Feature serves /challenges, /solve and /progress
type Feature struct {
	ledger  service.LedgerService
	catalog *challenge.Catalog
}

// NewFeature creates a new challenges feature instance
func NewFeature(ledger service.LedgerService, catalog *challenge.Catalog) *Feature {
	return &Feature{
		ledger:  ledger,
		catalog: catalog,
	}
}

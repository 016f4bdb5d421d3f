package resolver

import (
	"fmt"

	"github.com/aevon-lab/servicestate/internal/core/storage"
)

// DefaultMapping returns the built-in service → family assignments.
// Services not listed fall back to FamilyDefault.
func DefaultMapping() map[string]string {
	return map[string]string{
		"HDFS":  FamilyHAMaster,
		"YARN":  FamilyHAMaster,
		"HBASE": FamilyHAMaster,
		"TEZ":   FamilyClientOnly,
		"PIG":   FamilyClientOnly,
		"SQOOP": FamilyClientOnly,
	}
}

// Factory resolves the StateStrategy for a service name.
// Safe for concurrent use.
type Factory struct {
	byService map[string]StateStrategy
	fallback  StateStrategy
	families  map[string]string
}

// NewFactory builds one strategy per family over store and assigns services per mapping.
func NewFactory(store storage.ComponentStore, mapping map[string]string) (*Factory, error) {
	if store == nil {
		return nil, fmt.Errorf("resolver: component store must not be nil")
	}

	perFamily := make(map[string]StateStrategy, len(Families))
	for name, fam := range Families {
		perFamily[name] = componentStrategy{store: store, family: fam}
	}

	f := &Factory{
		byService: make(map[string]StateStrategy, len(mapping)),
		fallback:  perFamily[FamilyDefault],
		families:  make(map[string]string, len(mapping)),
	}
	for service, family := range mapping {
		s, ok := perFamily[family]
		if !ok {
			return nil, fmt.Errorf("resolver: service %q mapped to unknown family %q", service, family)
		}
		f.byService[service] = s
		f.families[service] = family
	}
	return f, nil
}

// ForService returns the strategy registered for serviceName, or the default family.
// Lookup is case-sensitive.
func (f *Factory) ForService(serviceName string) StateStrategy {
	if s, ok := f.byService[serviceName]; ok {
		return s
	}
	return f.fallback
}

// FamilyOf names the family serving serviceName.
func (f *Factory) FamilyOf(serviceName string) string {
	if fam, ok := f.families[serviceName]; ok {
		return fam
	}
	return FamilyDefault
}

package models

import (
	"database/sql/driver"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Service is a tag a participant can volunteer for: an instrument or a practical service.
type Service string

const (
	ServiceGuitar Service = "guitar"
	ServicePiano  Service = "piano"
	ServiceViolin Service = "violin"
	ServiceCello  Service = "cello"
	ServiceFlute  Service = "flute"
	ServiceDrums  Service = "drums"
	ServiceBass   Service = "bass"
	ServiceVocals Service = "vocals"

	ServiceChairs      Service = "chairs"
	ServiceKitchen     Service = "kitchen"
	ServiceChildcare   Service = "childcare"
	ServiceTechnics    Service = "technics"
	ServiceDecoration  Service = "decoration"
	ServiceCleanup     Service = "cleanup"
	ServiceTranslation Service = "translation"
	ServiceWelcome     Service = "welcome"
)

var instruments = map[Service]bool{
	ServiceGuitar: true,
	ServicePiano:  true,
	ServiceViolin: true,
	ServiceCello:  true,
	ServiceFlute:  true,
	ServiceDrums:  true,
	ServiceBass:   true,
	ServiceVocals: true,
}

var otherServices = map[Service]bool{
	ServiceChairs:      true,
	ServiceKitchen:     true,
	ServiceChildcare:   true,
	ServiceTechnics:    true,
	ServiceDecoration:  true,
	ServiceCleanup:     true,
	ServiceTranslation: true,
	ServiceWelcome:     true,
}

func (s Service) IsInstrument() bool {
	return instruments[s]
}

func (s Service) IsKnown() bool {
	return instruments[s] || otherServices[s]
}

// KnownServices lists every accepted tag, instruments first.
func KnownServices() []Service {
	return append(slices.Sorted(maps.Keys(instruments)), slices.Sorted(maps.Keys(otherServices))...)
}

// ServiceSet is a set of services. In the database it is stored as a
// sorted, comma-joined string.
type ServiceSet map[Service]struct{}

func NewServiceSet(services ...Service) ServiceSet {
	set := make(ServiceSet, len(services))
	for _, s := range services {
		set[s] = struct{}{}
	}
	return set
}

// ParseServices builds a set from user input and rejects unknown tags.
func ParseServices(tags []string) (ServiceSet, error) {
	set := make(ServiceSet, len(tags))
	for _, raw := range tags {
		s := Service(strings.ToLower(strings.TrimSpace(raw)))
		if s == "" {
			continue
		}
		if !s.IsKnown() {
			return nil, fmt.Errorf("unknown service %q", raw)
		}
		set[s] = struct{}{}
	}
	return set, nil
}

// splitServices is lenient: tokens that are no longer known are kept.
func splitServices(joined string) ServiceSet {
	set := ServiceSet{}
	for _, tok := range strings.Split(joined, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			set[Service(tok)] = struct{}{}
		}
	}
	return set
}

func (s ServiceSet) Has(svc Service) bool {
	_, ok := s[svc]
	return ok
}

// Sorted returns the members in a stable order.
func (s ServiceSet) Sorted() []Service {
	out := make([]Service, 0, len(s))
	for svc := range s {
		out = append(out, svc)
	}
	slices.Sort(out)
	return out
}

func (s ServiceSet) String() string {
	parts := make([]string, 0, len(s))
	for _, svc := range s.Sorted() {
		parts = append(parts, string(svc))
	}
	return strings.Join(parts, ",")
}

func (s ServiceSet) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *ServiceSet) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = ServiceSet{}
	case string:
		*s = splitServices(v)
	case []byte:
		*s = splitServices(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ServiceSet", value)
	}
	return nil
}

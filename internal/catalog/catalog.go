package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// MaxDurationMonths bounds catalog durations.
const MaxDurationMonths = 120

// ServiceCatalog lists the providers and preset amounts of one service.
type ServiceCatalog struct {
	Service   models.ServiceType `yaml:"service" json:"service"`
	Name      string             `yaml:"name" json:"name"`
	Presets   []int              `yaml:"presets" json:"presets,omitempty"`
	Providers []models.Provider  `yaml:"providers" json:"providers"`
}

// Catalog is the static, read-only product table: service -> provider -> category -> plans.
// A Catalog is immutable once parsed and safe for concurrent reads.
type Catalog struct {
	Services  []ServiceCatalog  `yaml:"services"`
	Durations []models.Duration `yaml:"durations"`
	Banks     []models.Bank     `yaml:"banks"`

	index map[models.ServiceType]map[string]map[string][]models.Plan
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks its invariants. A catalog that fails
// these checks is a configuration error, not something to serve partially.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.buildIndex(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) buildIndex() error {
	c.index = make(map[models.ServiceType]map[string]map[string][]models.Plan, len(c.Services))
	planIDs := make(map[string]bool)

	for _, svc := range c.Services {
		if !knownService(svc.Service) {
			return fmt.Errorf("catalog: unknown service %q", svc.Service)
		}
		if _, dup := c.index[svc.Service]; dup {
			return fmt.Errorf("catalog: duplicate service %q", svc.Service)
		}
		providers := make(map[string]map[string][]models.Plan, len(svc.Providers))
		for _, p := range svc.Providers {
			if p.Key == "" {
				return fmt.Errorf("catalog: %s provider without key", svc.Service)
			}
			if _, dup := providers[p.Key]; dup {
				return fmt.Errorf("catalog: duplicate provider %s/%s", svc.Service, p.Key)
			}
			categories := make(map[string][]models.Plan, len(p.Categories))
			for _, cat := range p.Categories {
				if _, dup := categories[cat.Key]; dup {
					return fmt.Errorf("catalog: duplicate category %s/%s/%s", svc.Service, p.Key, cat.Key)
				}
				for _, plan := range cat.Plans {
					if err := checkPlan(plan); err != nil {
						return fmt.Errorf("catalog: %s/%s/%s: %w", svc.Service, p.Key, cat.Key, err)
					}
					if planIDs[plan.ID] {
						return fmt.Errorf("catalog: duplicate plan id %q", plan.ID)
					}
					planIDs[plan.ID] = true
				}
				// known keys always resolve, even to an empty sequence
				plans := cat.Plans
				if plans == nil {
					plans = []models.Plan{}
				}
				categories[cat.Key] = plans
			}
			providers[p.Key] = categories
		}
		c.index[svc.Service] = providers
	}

	for _, d := range c.Durations {
		if d.Months <= 0 || d.Months > MaxDurationMonths {
			return fmt.Errorf("catalog: duration %q must be between 1 and %d months", d.Label, MaxDurationMonths)
		}
	}
	banks := make(map[string]bool, len(c.Banks))
	for _, b := range c.Banks {
		if b.Key == "" || banks[b.Key] {
			return fmt.Errorf("catalog: missing or duplicate bank key %q", b.Key)
		}
		banks[b.Key] = true
	}
	return nil
}

func checkPlan(p models.Plan) error {
	if p.ID == "" {
		return errors.New("plan without id")
	}
	if p.Amount <= 0 {
		return fmt.Errorf("plan %s: amount must be positive", p.ID)
	}
	if p.ActualValue != nil && *p.ActualValue < p.Amount {
		return fmt.Errorf("plan %s: actual value %d below amount %d", p.ID, *p.ActualValue, p.Amount)
	}
	return nil
}

func knownService(s models.ServiceType) bool {
	switch s {
	case models.ServiceAirtime, models.ServiceData, models.ServiceCable, models.ServiceWallet:
		return true
	}
	return false
}

// Service returns the catalog entry for a service.
func (c *Catalog) Service(service models.ServiceType) (*ServiceCatalog, error) {
	for i := range c.Services {
		if c.Services[i].Service == service {
			return &c.Services[i], nil
		}
	}
	return nil, utils.ErrUnknownService
}

// LookupPlans returns the ordered plans for a (service, provider, category) key.
// Known keys without plans yield an empty slice; keys outside the catalog are errors.
func (c *Catalog) LookupPlans(service models.ServiceType, provider, category string) ([]models.Plan, error) {
	providers, ok := c.index[service]
	if !ok {
		return nil, utils.ErrUnknownService
	}
	categories, ok := providers[provider]
	if !ok {
		return nil, utils.ErrUnknownProvider
	}
	plans, ok := categories[category]
	if !ok {
		return nil, utils.ErrUnknownCategory
	}
	out := make([]models.Plan, len(plans))
	copy(out, plans)
	return out, nil
}

// LookupPlanByID finds one plan under a (service, provider, category) key.
func (c *Catalog) LookupPlanByID(service models.ServiceType, provider, category, id string) (*models.Plan, error) {
	plans, err := c.LookupPlans(service, provider, category)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, utils.ErrPlanNotFound
}

// OffersDuration reports whether months is one of the catalog's durations.
func (c *Catalog) OffersDuration(months int) bool {
	for _, d := range c.Durations {
		if d.Months == months {
			return true
		}
	}
	return false
}

// Bank returns a funding bank by key.
func (c *Catalog) Bank(key string) (*models.Bank, error) {
	for i := range c.Banks {
		if c.Banks[i].Key == key {
			b := c.Banks[i]
			return &b, nil
		}
	}
	return nil, utils.ErrUnknownBank
}

package registry

import (
	"fmt"
	"strings"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
)

// Role is the role of a classified address in the token economy of a DAO
type Role string

const (
	RoleLending  Role = "lending"
	RoleCEX      Role = "cex"
	RoleDEX      Role = "dex"
	RoleTreasury Role = "treasury"
	// RoleSink addresses mint when sending and burn when receiving
	RoleSink Role = "sink"
)

// SupplyRoles are the roles backed by a supply field of the token aggregate
var SupplyRoles = []Role{RoleLending, RoleCEX, RoleDEX, RoleTreasury}

// ClassificationRegistry defines the interface for address classification lookups
//
//go:generate mockgen -source=classification.go -destination=../mocks/classification_registry.go -package=mocks -mock_names=ClassificationRegistry=MockClassificationRegistry
type ClassificationRegistry interface {
	// IsMember checks if an address has a role for a given DAO
	IsMember(dao domain.DaoID, role Role, address string) bool

	// Addresses returns the classified addresses of a role for a given DAO
	Addresses(dao domain.DaoID, role Role) []string
}

// ClassificationData represents the structure of the classification.json file
// Key format: "DAO" -> "role" -> list of addresses
type ClassificationData map[string]map[string][]string

type classificationRegistry struct {
	// Fast lookup map: "DAO:role:address" -> true
	members   map[string]bool
	addresses map[string][]string
}

// ClassificationLoader loads classification registries from disk
type ClassificationLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewClassificationLoader creates a new classification loader
func NewClassificationLoader(fs adapter.FileSystem, json adapter.JSON) *ClassificationLoader {
	return &ClassificationLoader{fs: fs, json: json}
}

// Load loads the classification registry from a JSON file
func (l *ClassificationLoader) Load(filePath string) (ClassificationRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification file: %w", err)
	}

	var classificationData ClassificationData
	if err := l.json.Unmarshal(data, &classificationData); err != nil {
		return nil, fmt.Errorf("failed to parse classification JSON: %w", err)
	}

	return NewClassificationRegistry(classificationData)
}

// NewClassificationRegistry builds a registry from in-memory classification data
func NewClassificationRegistry(data ClassificationData) (ClassificationRegistry, error) {
	r := &classificationRegistry{
		members:   make(map[string]bool),
		addresses: make(map[string][]string),
	}

	for dao, roles := range data {
		daoID := domain.ParseDaoID(dao)
		for role, addresses := range roles {
			normalizedRole := Role(strings.ToLower(role))
			if !validRole(normalizedRole) {
				return nil, fmt.Errorf("unknown role %q for dao %s", role, daoID)
			}

			roleKey := fmt.Sprintf("%s:%s", daoID, normalizedRole)
			for _, addr := range addresses {
				normalizedAddr := strings.ToLower(addr)
				key := fmt.Sprintf("%s:%s", roleKey, normalizedAddr)
				if r.members[key] {
					continue
				}
				r.members[key] = true
				r.addresses[roleKey] = append(r.addresses[roleKey], domain.NormalizeAddress(addr))
			}
		}
	}

	return r, nil
}

// IsMember checks if an address has a role for a given DAO
func (r *classificationRegistry) IsMember(dao domain.DaoID, role Role, address string) bool {
	if r == nil {
		return false
	}
	key := fmt.Sprintf("%s:%s:%s", dao, role, strings.ToLower(address))
	return r.members[key]
}

// Addresses returns the classified addresses of a role for a given DAO
func (r *classificationRegistry) Addresses(dao domain.DaoID, role Role) []string {
	if r == nil {
		return nil
	}
	return r.addresses[fmt.Sprintf("%s:%s", dao, role)]
}

func validRole(role Role) bool {
	switch role {
	case RoleLending, RoleCEX, RoleDEX, RoleTreasury, RoleSink:
		return true
	}
	return false
}

package stac

// Provider describes an organization that captured or processed the data
// in a Collection.
type Provider struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Common provider roles.
const (
	ProviderRoleLicensor   = "licensor"
	ProviderRoleProducer   = "producer"
	ProviderRoleProcessor  = "processor"
	ProviderRoleHost       = "host"
)

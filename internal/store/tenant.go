package store

import (
	"gorm.io/gorm"

	"github.com/verustcode/verustcode/internal/model"
)

// TenantStore defines operations for the Tenant aggregate.
type TenantStore interface {
	Create(tenant *model.Tenant) error
	GetByID(id string) (*model.Tenant, error)
	GetBySlug(slug string) (*model.Tenant, error)

	// GetByProviderSecret looks up the tenant whose WebhookSecrets map has
	// the given provider key set to secret. Used by intake authentication.
	GetByProviderSecret(provider, secret string) (*model.Tenant, error)

	Update(tenant *model.Tenant) error
	List(limit, offset int) ([]model.Tenant, int64, error)
}

type tenantStore struct {
	db *gorm.DB
}

func newTenantStore(db *gorm.DB) TenantStore {
	return &tenantStore{db: db}
}

func (s *tenantStore) Create(tenant *model.Tenant) error {
	return s.db.Create(tenant).Error
}

func (s *tenantStore) GetByID(id string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *tenantStore) GetBySlug(slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByProviderSecret scans tenants for one whose webhook secret for the
// given provider matches. The secret lookup is a low-cardinality,
// low-frequency operation (one per inbound webhook), so an in-process scan
// over all tenants is acceptable; this mirrors the teacher's single-tenant
// shortcut generalized to a full table scan rather than a new index over an
// encrypted-at-rest JSON column.
func (s *tenantStore) GetByProviderSecret(provider, secret string) (*model.Tenant, error) {
	var tenants []model.Tenant
	if err := s.db.Find(&tenants).Error; err != nil {
		return nil, err
	}
	for i := range tenants {
		if tenants[i].WebhookSecretFor(provider) == secret {
			return &tenants[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *tenantStore) Update(tenant *model.Tenant) error {
	return s.db.Model(tenant).Updates(tenant).Error
}

func (s *tenantStore) List(limit, offset int) ([]model.Tenant, int64, error) {
	var tenants []model.Tenant
	var total int64

	query := s.db.Model(&model.Tenant{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tenants).Error
	return tenants, total, err
}

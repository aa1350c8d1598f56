package repository

import (
	"go-doc-ledger/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByCode(code string) (*model.Role, error)
	// PrivilegeCodes lists the privilege codes granted to a role.
	PrivilegeCodes(code string) ([]string, error)
	SeedDefaults(privileges PrivilegeRepository) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges").Order("code ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) PrivilegeCodes(code string) ([]string, error) {
	role, err := r.FindByCode(code)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(role.Privileges))
	for _, p := range role.Privileges {
		codes = append(codes, p.Code)
	}
	return codes, nil
}

// SeedDefaults creates missing roles and grants their default privileges once.
func (r *roleRepo) SeedDefaults(privileges PrivilegeRepository) error {
	for _, defaultRole := range model.DefaultRoles {
		var role model.Role
		err := r.db.Preload("Privileges").Where("code = ?", defaultRole.Code).First(&role).Error
		if err == gorm.ErrRecordNotFound {
			role = defaultRole
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if len(role.Privileges) > 0 {
			continue
		}
		granted, err := privileges.FindByCodes(model.DefaultRolePrivileges[role.Code])
		if err != nil {
			return err
		}
		if err := r.db.Model(&role).Association("Privileges").Replace(granted); err != nil {
			return err
		}
	}
	return nil
}

package database

import (
	"fmt"
	"log"

	"forgecms-backend/shared/config"
	"forgecms-backend/shared/database/models"
	utils "forgecms-backend/shared/utils/auth"
)

// SeedDatabase seeds the database with the default organization and the
// super admin owner account
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	org, created, err := seedDefaultOrganization()
	if err != nil {
		return err
	}
	if created {
		log.Printf("✅ Default organization created: %s (%s)", org.Name, org.Slug)
	}

	adminCreated, err := seedSuperAdmin(org)
	if err != nil {
		return err
	}
	if adminCreated {
		log.Println("✅ Super admin account created")
	}

	if !created && !adminCreated {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

func seedDefaultOrganization() (*models.Organization, bool, error) {
	cfg := config.GetConfig()

	var org models.Organization
	err := DB.Where("slug = ?", cfg.DefaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, false, nil
	}

	org = models.Organization{
		Name: cfg.DefaultOrgName,
		Slug: cfg.DefaultOrgSlug,
	}
	if err := DB.Create(&org).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create default organization: %w", err)
	}

	return &org, true, nil
}

func seedSuperAdmin(org *models.Organization) (bool, error) {
	cfg := config.GetConfig()

	var user models.User
	err := DB.Where("email = ?", cfg.SuperAdminEmail).First(&user).Error
	if err == nil {
		return false, ensureOwnerMembership(&user, org)
	}

	hashed, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash super admin password: %w", err)
	}

	user = models.User{
		Email:     cfg.SuperAdminEmail,
		Password:  hashed,
		FirstName: "Super",
		LastName:  "Admin",
		Status:    "ACTIVE",
	}
	if err := DB.Create(&user).Error; err != nil {
		return false, fmt.Errorf("failed to create super admin: %w", err)
	}

	return true, ensureOwnerMembership(&user, org)
}

func ensureOwnerMembership(user *models.User, org *models.Organization) error {
	var membership models.Membership
	err := DB.Where("user_id = ? AND organization_id = ?", user.ID, org.ID).First(&membership).Error
	if err == nil {
		return nil
	}

	membership = models.Membership{
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           models.RoleOwner,
	}
	if err := DB.Create(&membership).Error; err != nil {
		return fmt.Errorf("failed to create owner membership: %w", err)
	}
	return nil
}

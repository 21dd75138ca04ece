package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/models"
)

type packageService struct {
	db *gorm.DB
}

// NewPackageService creates a new PackageServicer.
func NewPackageService(db *gorm.DB) PackageServicer {
	return &packageService{db: db}
}

// ListPackages returns the catalog ordered by price.
func (s *packageService) ListPackages() ([]models.SubscriptionPackage, error) {
	var packages []models.SubscriptionPackage
	if err := s.db.Order("price ASC").Find(&packages).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return packages, nil
}

func (s *packageService) GetPackageByID(id string) (*models.SubscriptionPackage, error) {
	return findPackage(s.db, "id = ?", id)
}

func (s *packageService) GetPackageByName(name string) (*models.SubscriptionPackage, error) {
	return findPackage(s.db, "name = ?", name)
}

func findPackage(db *gorm.DB, query string, arg string) (*models.SubscriptionPackage, error) {
	var pkg models.SubscriptionPackage
	if err := db.Where(query, arg).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPackageNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &pkg, nil
}

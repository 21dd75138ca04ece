package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kumoney/internal/services"
)

// PackageHandler exposes the subscription catalog.
type PackageHandler struct {
	packageService services.PackageServicer
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packageService services.PackageServicer) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// ListPackages returns every purchasable tier
// @Summary     List subscription packages
// @Description List the free, pro and unlimited packages with their prices and limits. A limit of 0 means unlimited.
// @Tags        packages
// @Produce     json
// @Success     200 {array}  models.SubscriptionPackage "Packages"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /packages [get]
func (h *PackageHandler) ListPackages(c *gin.Context) {
	packages, err := h.packageService.ListPackages()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

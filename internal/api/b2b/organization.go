// organization.go implements organization self-service: a user registers
// their company (becoming its buyer), views it, and keeps its requisites
// current. Admin-side organization management lives in the admin package.
package b2b

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
)

// OrganizationHandlers handles organization self-service endpoints
type OrganizationHandlers struct {
	orgs  *repositories.OrganizationRepository
	users *repositories.UserRepository
}

// NewOrganizationHandlers creates a new OrganizationHandlers instance
func NewOrganizationHandlers(orgs *repositories.OrganizationRepository, users *repositories.UserRepository) *OrganizationHandlers {
	return &OrganizationHandlers{
		orgs:  orgs,
		users: users,
	}
}

// OrganizationRequest is the registration and update request body.
type OrganizationRequest struct {
	Name          string `json:"name" binding:"required"`
	LegalName     string `json:"legal_name"`
	INN           string `json:"inn" binding:"required"`
	KPP           string `json:"kpp"`
	OGRN          string `json:"ogrn"`
	AddressLegal  string `json:"address_legal"`
	AddressActual string `json:"address_actual"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Comment       string `json:"comment"`
}

// GetMyOrganizationHandler retrieves the actor's own organization
// GET /api/v1/organization
func (h *OrganizationHandlers) GetMyOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user.OrganizationID == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "You do not belong to an organization",
			})
			return
		}

		org, err := h.orgs.GetByID(c.Request.Context(), *user.OrganizationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve organization",
			})
			return
		}
		if org == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Organization not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"organization": org})
	}
}

// CreateOrganizationHandler registers a new organization with the actor as
// its buyer
// POST /api/v1/organization
func (h *OrganizationHandlers) CreateOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user.OrganizationID != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": "You already belong to an organization",
			})
			return
		}

		var req OrganizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}

		existing, err := h.orgs.GetByINN(c.Request.Context(), req.INN)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to register organization",
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": "An organization with this INN is already registered",
			})
			return
		}

		org := &models.Organization{
			Name:          req.Name,
			LegalName:     req.LegalName,
			INN:           req.INN,
			KPP:           req.KPP,
			OGRN:          req.OGRN,
			AddressLegal:  req.AddressLegal,
			AddressActual: req.AddressActual,
			Phone:         req.Phone,
			Email:         req.Email,
			Comment:       req.Comment,
			CreatedBy:     &user.ID,
		}
		if err := h.orgs.Create(c.Request.Context(), org); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to register organization",
			})
			return
		}

		if err := h.users.SetMembership(c.Request.Context(), user.ID, org.ID, models.RoleBuyer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to assign buyer role",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"organization": org})
	}
}

// UpdateOrganizationHandler updates the organization's requisites. Buyer only.
// PUT /api/v1/organization
func (h *OrganizationHandlers) UpdateOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !user.IsBuyer() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the buyer can update the organization",
			})
			return
		}

		var req OrganizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}

		org, err := h.orgs.GetByID(c.Request.Context(), *user.OrganizationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve organization",
			})
			return
		}
		if org == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Organization not found",
			})
			return
		}

		org.Name = req.Name
		org.LegalName = req.LegalName
		org.INN = req.INN
		org.KPP = req.KPP
		org.OGRN = req.OGRN
		org.AddressLegal = req.AddressLegal
		org.AddressActual = req.AddressActual
		org.Phone = req.Phone
		org.Email = req.Email
		org.Comment = req.Comment

		if err := h.orgs.Update(c.Request.Context(), org); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update organization",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"organization": org})
	}
}

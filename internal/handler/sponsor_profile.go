package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/config"
	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/payment"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/validation"
)

// SponsorHandler bundles the dependencies sponsors use to manage their
// company profile and run the booking wizard.
type SponsorHandler struct {
	Cfg      config.Config
	Sponsors *repository.SponsorRepo
	Writers  *repository.WriterRepo
	Bookings *repository.BookingRepo
	Payments *payment.Client
	Wizards  *WizardStore
}

// NewSponsorHandler constructs a SponsorHandler.  All dependencies must
// be non-nil.
func NewSponsorHandler(cfg config.Config, sponsors *repository.SponsorRepo, writers *repository.WriterRepo, bookings *repository.BookingRepo, payments *payment.Client, wizards *WizardStore) *SponsorHandler {
	if sponsors == nil || writers == nil || bookings == nil || payments == nil || wizards == nil {
		panic("nil dependency passed to NewSponsorHandler")
	}
	return &SponsorHandler{Cfg: cfg, Sponsors: sponsors, Writers: writers, Bookings: bookings, Payments: payments, Wizards: wizards}
}

// sponsorProfile loads the calling sponsor's profile.
func (h *SponsorHandler) sponsorProfile(c echo.Context) (model.Sponsor, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Sponsor{}, fail(c, http.StatusUnauthorized, "unauthorized")
	}
	sp, err := h.Sponsors.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Sponsor{}, fail(c, http.StatusNotFound, "sponsor profile not found")
		}
		return model.Sponsor{}, fail(c, http.StatusInternalServerError, "query failed")
	}
	return sp, nil
}

type sponsorProfileReq struct {
	CompanyName  string  `json:"company_name"`
	WebsiteURL   *string `json:"website_url"`
	LogoURL      *string `json:"logo_url"`
	BillingEmail *string `json:"billing_email"`
}

func (r *sponsorProfileReq) validate() string {
	r.CompanyName = validation.SanitizeText(strings.TrimSpace(r.CompanyName))
	if r.CompanyName == "" {
		return "company_name is required"
	}
	for _, u := range []*string{r.WebsiteURL, r.LogoURL} {
		if u != nil && *u != "" {
			clean, err := validation.ValidateURL(*u)
			if err != nil {
				return "invalid URL"
			}
			*u = clean
		}
	}
	if r.BillingEmail != nil {
		e := strings.ToLower(strings.TrimSpace(*r.BillingEmail))
		if e != "" && !strings.Contains(e, "@") {
			return "invalid billing_email"
		}
		r.BillingEmail = &e
	}
	return ""
}

// CreateProfile handles POST /v1/sponsor/profile.
func (h *SponsorHandler) CreateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sponsorProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	sp := model.Sponsor{
		UserID:       userID,
		CompanyName:  req.CompanyName,
		WebsiteURL:   req.WebsiteURL,
		LogoURL:      req.LogoURL,
		BillingEmail: req.BillingEmail,
	}
	if err := h.Sponsors.Create(c.Request().Context(), &sp); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, sponsorProfileResp(sp))
}

// GetProfile handles GET /v1/sponsor/profile.
func (h *SponsorHandler) GetProfile(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sponsorProfileResp(sp))
}

// UpdateProfile handles PATCH /v1/sponsor/profile.
func (h *SponsorHandler) UpdateProfile(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	var req sponsorProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	sp.CompanyName = req.CompanyName
	sp.WebsiteURL = req.WebsiteURL
	sp.LogoURL = req.LogoURL
	sp.BillingEmail = req.BillingEmail
	if err := h.Sponsors.Update(c.Request().Context(), &sp); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, sponsorProfileResp(sp))
}

func sponsorProfileResp(sp model.Sponsor) echo.Map {
	resp := echo.Map{
		"id":           sp.ID,
		"company_name": sp.CompanyName,
	}
	if sp.WebsiteURL != nil {
		resp["website_url"] = *sp.WebsiteURL
	}
	if sp.LogoURL != nil {
		resp["logo_url"] = *sp.LogoURL
	}
	if sp.BillingEmail != nil {
		resp["billing_email"] = *sp.BillingEmail
	}
	return resp
}

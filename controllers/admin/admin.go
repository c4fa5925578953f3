package adminController

import (
	"log"
	"time"

	"yideng/ledger"
	"yideng/middleware"
	"yideng/models"
	courseModels "yideng/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type Handler struct {
	ledger *ledger.Ledger
	db     *gorm.DB
}

func New(l *ledger.Ledger, db *gorm.DB) *Handler {
	return &Handler{ledger: l, db: db}
}

// Reconcile runs the ledger consistency audit on demand
func (h *Handler) Reconcile(c *fiber.Ctx) error {
	report, err := h.ledger.Reconcile(c.UserContext())
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	if !report.OK() {
		log.Printf("[RECONCILE] %d issue(s) found on demand: %v", len(report.Issues), report.Issues)
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Ledger is inconsistent!", report)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ledger is consistent.", report)
}

type eventCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// GetStats summarizes activity for a day (?date=YYYY-MM-DD, default today) and its week
func (h *Handler) GetStats(c *fiber.Ctx) error {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := now.Parse(raw)
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"date": "Invalid date!"})
		}
		day = parsed
	}

	dayStart := now.With(day).BeginningOfDay()
	dayEnd := now.With(day).EndOfDay()
	weekStart := now.With(day).BeginningOfWeek()

	db := h.db.WithContext(c.UserContext())

	var daily []eventCount
	err := db.Model(&models.LedgerEvent{}).
		Select("name, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", dayStart, dayEnd).
		Group("name").
		Order("name").
		Scan(&daily).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	var newAccounts, weeklyAccounts, weeklyPurchases, weeklyCertificates int64
	db.Model(&models.Account{}).Where("created_at BETWEEN ? AND ?", dayStart, dayEnd).Count(&newAccounts)
	db.Model(&models.Account{}).Where("created_at BETWEEN ? AND ?", weekStart, dayEnd).Count(&weeklyAccounts)
	db.Model(&courseModels.Purchase{}).Where("purchased_at BETWEEN ? AND ?", weekStart, dayEnd).Count(&weeklyPurchases)
	db.Model(&courseModels.Certificate{}).Where("issued_at BETWEEN ? AND ?", weekStart, dayEnd).Count(&weeklyCertificates)

	info, err := h.ledger.Token.Info(c.UserContext())
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched!", fiber.Map{
		"date":        dayStart.Format("2006-01-02"),
		"events":      daily,
		"newAccounts": newAccounts,
		"week": fiber.Map{
			"from":         weekStart.Format("2006-01-02"),
			"accounts":     weeklyAccounts,
			"purchases":    weeklyPurchases,
			"certificates": weeklyCertificates,
		},
		"totalSupply": info.TotalSupply,
		"reserve":     info.Reserve,
	})
}
